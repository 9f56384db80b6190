package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"predict-go/internal/config"
	"predict-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type PredictionServer struct {
	server          *mcp.Server
	languageService *service.LanguageService
	config          *config.Config
	logger          *zap.Logger
	handler         *mcp.StreamableHTTPHandler
}

type PredictParams struct {
	Phrase string `json:"phrase" jsonschema:"the words typed so far"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of candidates to return"`
}

type CorrectParams struct {
	Sentence string `json:"sentence" jsonschema:"the sentence to spell-check"`
}

func NewPredictionServer(languageService *service.LanguageService, cfg *config.Config, logger *zap.Logger) *PredictionServer {
	server := &PredictionServer{
		languageService: languageService,
		config:          cfg,
		logger:          logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "PredictiveText",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "predictNextWord",
		Description: "Predict the next word of a phrase. Returns candidate words ranked by how often they followed the end of the phrase in the training corpus",
	}, server.handlePredict)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "correctSentence",
		Description: "Correct the spelling of a sentence using edit distance and the words preceding each token",
	}, server.handleCorrect)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func (s *PredictionServer) handlePredict(ctx context.Context, req *mcp.CallToolRequest, args PredictParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling predictNextWord request", zap.String("phrase", args.Phrase))

	prediction, err := s.languageService.Predict(args.Phrase, args.Limit)
	if err != nil {
		s.logger.Error("Failed to predict", zap.String("phrase", args.Phrase), zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to predict: %v", err)), nil, nil
	}

	if len(prediction.Candidates) == 0 {
		return textResult(fmt.Sprintf("No prediction for context %q.", prediction.Context.String())), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Predictions after %q:\n", prediction.Context.String())
	for i, f := range prediction.Candidates {
		fmt.Fprintf(&sb, "%d. %s (%d)\n", i+1, f.Token, f.Count)
	}
	return textResult(sb.String()), nil, nil
}

func (s *PredictionServer) handleCorrect(ctx context.Context, req *mcp.CallToolRequest, args CorrectParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling correctSentence request", zap.String("sentence", args.Sentence))

	result, err := s.languageService.Correct(args.Sentence)
	if err != nil {
		s.logger.Error("Failed to correct", zap.String("sentence", args.Sentence), zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to correct: %v", err)), nil, nil
	}

	return textResult(result.Corrected), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	result := textResult(text)
	result.IsError = true
	return result
}

// Handler returns the streamable HTTP transport
func (s *PredictionServer) Handler() http.Handler {
	return s.handler
}

// SetupHTTPRoutes serves MCP on its own listener when a port is configured,
// otherwise under /mcp on router
func (s *PredictionServer) SetupHTTPRoutes(router *gin.Engine) {
	if s.config.MCP.Port == 0 {
		router.Any("/mcp", gin.WrapH(s.handler))
		return
	}

	go func() {
		address := fmt.Sprintf("%s:%d", s.config.MCP.Host, s.config.MCP.Port)
		s.logger.Info("MCP server going to listen", zap.String("address", address))
		if err := http.ListenAndServe(address, s.handler); err != nil {
			s.logger.Fatal("MCP server failed", zap.Error(err))
		}
	}()
}
