package controller

import (
	"errors"
	"net/http"
	"strings"

	"predict-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LanguageController struct {
	languageService *service.LanguageService
	logger          *zap.Logger
}

func NewLanguageController(languageService *service.LanguageService, logger *zap.Logger) *LanguageController {
	return &LanguageController{
		languageService: languageService,
		logger:          logger,
	}
}

type PredictRequest struct {
	Phrase string `json:"phrase" binding:"required"`
	Limit  int    `json:"limit"`
}

// CorrectRequest takes a pointer so an empty sentence passes binding
type CorrectRequest struct {
	Sentence *string `json:"sentence" binding:"required"`
}

type KnownWordRequest struct {
	Word string `json:"word" binding:"required"`
}

func (lc *LanguageController) Predict(c *gin.Context) {
	var request PredictRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		lc.badRequest(c, err)
		return
	}

	prediction, err := lc.languageService.Predict(request.Phrase, request.Limit)
	if err != nil {
		lc.serviceError(c, "Failed to predict next token", err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (lc *LanguageController) Correct(c *gin.Context) {
	var request CorrectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		lc.badRequest(c, err)
		return
	}

	result, err := lc.languageService.Correct(*request.Sentence)
	if err != nil {
		lc.serviceError(c, "Failed to correct sentence", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (lc *LanguageController) Evaluation(c *gin.Context) {
	report, err := lc.languageService.LastReport()
	if err != nil {
		lc.serviceError(c, "No evaluation available", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (lc *LanguageController) AddKnownWord(c *gin.Context) {
	var request KnownWordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		lc.badRequest(c, err)
		return
	}
	if strings.TrimSpace(request.Word) == "" {
		lc.badRequest(c, errors.New("word must not be blank"))
		return
	}

	if err := lc.languageService.AddKnownWord(c.Request.Context(), request.Word); err != nil {
		lc.serviceError(c, "Failed to add known word", err)
		return
	}

	lc.logger.Info("Known word added", zap.String("word", request.Word))
	c.JSON(http.StatusCreated, gin.H{"word": strings.ToLower(strings.TrimSpace(request.Word))})
}

func (lc *LanguageController) RemoveKnownWord(c *gin.Context) {
	word := c.Param("word")
	if err := lc.languageService.RemoveKnownWord(c.Request.Context(), word); err != nil {
		lc.serviceError(c, "Failed to remove known word", err)
		return
	}

	lc.logger.Info("Known word removed", zap.String("word", word))
	c.Status(http.StatusNoContent)
}

func (lc *LanguageController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, lc.languageService.Stats())
}

func (lc *LanguageController) badRequest(c *gin.Context, err error) {
	lc.logger.Error("Invalid request payload", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request payload",
		"details": err.Error(),
	})
}

func (lc *LanguageController) serviceError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotBuilt):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrNoEvaluation):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCorrectionUnavailable):
		status = http.StatusNotImplemented
	}

	lc.logger.Error(message, zap.Error(err))
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
