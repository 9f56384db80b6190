package mcp

import (
	"context"
	"strings"
	"testing"

	"predict-go/internal/config"
	"predict-go/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, build bool) *PredictionServer {
	t.Helper()

	cfg := config.Default()
	cfg.Model.Order = 3
	ls, err := service.NewLanguageService(cfg, nil, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, ls.Train(strings.Fields("i like the cat and the ata runs i like the cat")))
	if build {
		require.NoError(t, ls.Build(context.Background()))
	}
	return NewPredictionServer(ls, cfg, zap.NewNop())
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestPredictionServer_Predict(t *testing.T) {
	s := newTestServer(t, true)

	result, _, err := s.handlePredict(context.Background(), nil, PredictParams{Phrase: "i like the"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "1. cat (2)")

	result, _, err = s.handlePredict(context.Background(), nil, PredictParams{Phrase: "purple elephant"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No prediction")
}

func TestPredictionServer_Correct(t *testing.T) {
	s := newTestServer(t, true)

	result, _, err := s.handleCorrect(context.Background(), nil, CorrectParams{Sentence: "i lik the cta"})
	require.NoError(t, err)
	assert.Equal(t, "i like the cat", resultText(t, result))
}

func TestPredictionServer_NotBuilt(t *testing.T) {
	s := newTestServer(t, false)

	result, _, err := s.handleCorrect(context.Background(), nil, CorrectParams{Sentence: "teh"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not been built")
}
