package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"predict-go/internal/config"
	"predict-go/internal/controller"
	"predict-go/internal/service"
	"predict-go/internal/service/ngram"
	"predict-go/internal/service/shannon"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, build bool) (*gin.Engine, *service.LanguageService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Model.Order = 3
	ls, err := service.NewLanguageService(cfg, nil, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, ls.Train(strings.Fields("i like the cat and the ata runs i like the cat")))
	if build {
		require.NoError(t, ls.Build(context.Background()))
	}

	lc := controller.NewLanguageController(ls, zap.NewNop())
	return SetupRouter(lc, nil, zap.NewNop()), ls
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRouter_RequestIDIsPropagated(t *testing.T) {
	router, _ := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRouter_Predict(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/predict", gin.H{"phrase": "I like the"})
	require.Equal(t, http.StatusOK, w.Code)

	var prediction ngram.Prediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prediction))
	assert.Equal(t, "like the", prediction.Context.String())
	require.Len(t, prediction.Candidates, 1)
	assert.Equal(t, ngram.Follower{Token: "cat", Count: 2}, prediction.Candidates[0])
}

func TestRouter_PredictRejectsMissingPhrase(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/predict", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}

func TestRouter_Correct(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{"sentence": "i lik the cta"})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.CorrectionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "i like the cat", result.Corrected)
	assert.Len(t, result.Tokens, 4)
}

func TestRouter_CorrectEmptySentence(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{"sentence": ""})
	require.Equal(t, http.StatusOK, w.Code)

	var result service.CorrectionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "", result.Corrected)
	assert.Empty(t, result.Tokens)
}

func TestRouter_CorrectRejectsMissingSentence(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}

func TestRouter_NotBuilt(t *testing.T) {
	router, _ := newTestRouter(t, false)

	w := doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{"sentence": "teh"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Evaluation(t *testing.T) {
	router, ls := newTestRouter(t, true)

	w := doJSON(router, http.MethodGet, "/api/v1/evaluation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := ls.Evaluate(strings.Fields("i like the cat"))
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, "/api/v1/evaluation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report shannon.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, int64(2), report.Total)
	assert.Equal(t, 100.0, report.FirstGuessAccuracy)
}

func TestRouter_KnownWords(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodPost, "/api/v1/known-words", gin.H{"word": " Lik "})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"word":"lik"}`, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{"sentence": "i lik"})
	assert.Contains(t, w.Body.String(), `"corrected":"i lik"`)

	w = doJSON(router, http.MethodDelete, "/api/v1/known-words/lik", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/correct", gin.H{"sentence": "i lik"})
	assert.Contains(t, w.Body.String(), `"corrected":"i like"`)

	w = doJSON(router, http.MethodPost, "/api/v1/known-words", gin.H{"word": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Stats(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.ServiceStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.Built)
	assert.Equal(t, "word", stats.Granularity)
	assert.Equal(t, 3, stats.Store.MaxOrder)
	assert.Nil(t, stats.Evaluation)
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := doJSON(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
