package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"predict-go/internal/config"
	"predict-go/internal/metrics"
	"predict-go/internal/service/corpus"
	"predict-go/internal/service/ngram"
	"predict-go/internal/service/shannon"
	"predict-go/internal/service/spelling"

	"go.uber.org/zap"
)

var (
	// ErrNotBuilt is returned by queries issued before Build
	ErrNotBuilt = errors.New("language model has not been built")
	// ErrNoEvaluation is returned when no evaluation has run yet
	ErrNoEvaluation = errors.New("no evaluation has been run")
	// ErrCorrectionUnavailable is returned for models that cannot spell-check, such as char models
	ErrCorrectionUnavailable = errors.New("spelling correction is not available for this model")
)

// CorrectionResult is the answer to a sentence correction
type CorrectionResult struct {
	Original  string                `json:"original"`
	Corrected string                `json:"corrected"`
	Tokens    []spelling.Correction `json:"tokens"`
}

// ServiceStats describes the loaded model
type ServiceStats struct {
	Granularity string           `json:"granularity"`
	Built       bool             `json:"built"`
	Store       ngram.StoreStats `json:"store"`
	Evaluation  *shannon.Report  `json:"evaluation,omitempty"`
}

// LanguageService owns the frequency store and everything read from it: the
// ranker, the spelling corrector and the last evaluation report. It trains
// while unbuilt; Build freezes the store and makes the readers available.
type LanguageService struct {
	cfg       *config.Config
	store     *ngram.FrequencyStore
	tokenizer corpus.Tokenizer
	known     spelling.KnownWords
	metrics   *metrics.Metrics
	logger    *zap.Logger

	mu        sync.RWMutex // Protects the fields below
	ranker    *ngram.Ranker
	corrector *spelling.Corrector
	report    *shannon.Report
}

// NewLanguageService creates an untrained service. known and m may be nil.
func NewLanguageService(cfg *config.Config, known spelling.KnownWords, m *metrics.Metrics, logger *zap.Logger) (*LanguageService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := corpus.NewTokenizerRegistry()
	tok, ok := registry.GetTokenizer(cfg.Model.Granularity)
	if !ok {
		return nil, fmt.Errorf("no tokenizer found for granularity %q (supported: %s)",
			cfg.Model.Granularity, strings.Join(registry.SupportedGranularities(), ", "))
	}

	store, err := ngram.NewFrequencyStore(cfg.Model.Order, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create frequency store: %w", err)
	}

	return &LanguageService{
		cfg:       cfg,
		store:     store,
		tokenizer: tok,
		known:     known,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Tokenize cleans text and splits it at the model granularity
func (ls *LanguageService) Tokenize(text string) []string {
	return ls.tokenizer.Tokenize(corpus.Clean(text))
}

// Train adds one pass over tokens to the store
func (ls *LanguageService) Train(tokens []string) error {
	if err := ls.store.Train(tokens); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	ls.metrics.ObserveTraining(len(tokens))
	return nil
}

// Build freezes the store and constructs the ranker and corrector. Known words
// are loaded from the persistent store when one is configured. Calling Build
// again is a no-op.
func (ls *LanguageService) Build(ctx context.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.ranker != nil {
		return nil
	}

	ls.store.Freeze()

	ranker, err := ngram.NewRanker(ls.store)
	if err != nil {
		return fmt.Errorf("failed to create ranker: %w", err)
	}

	var corrector *spelling.Corrector
	if ls.tokenizer.Granularity() == "word" {
		corrector, err = spelling.NewCorrector(ls.store, spelling.Config{
			Smoothing:              ls.cfg.Corrector.Smoothing,
			Alphabet:               ls.cfg.Corrector.Alphabet,
			MaxWordLength:          ls.cfg.Corrector.MaxWordLength,
			BloomFalsePositiveRate: ls.cfg.Corrector.BloomFPRate,
		}, ls.known, ls.logger)
		if err != nil {
			return fmt.Errorf("failed to create corrector: %w", err)
		}
		if err := corrector.LoadKnownWords(ctx); err != nil {
			// The model is still usable without the protected words
			ls.logger.Warn("Failed to load known words", zap.Error(err))
		}
	}

	ls.ranker = ranker
	ls.corrector = corrector

	stats := ls.store.Stats()
	ls.logger.Info("Language model built",
		zap.Int("order", stats.MaxOrder),
		zap.String("granularity", ls.tokenizer.Granularity()),
		zap.Int64("total_tokens", stats.TotalTokens),
		zap.Int("vocabulary_size", stats.VocabularySize),
		zap.Bool("corrector", corrector != nil),
	)
	return nil
}

func (ls *LanguageService) readers() (*ngram.Ranker, *spelling.Corrector, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if ls.ranker == nil {
		return nil, nil, ErrNotBuilt
	}
	return ls.ranker, ls.corrector, nil
}

// Evaluate plays the guessing game over tokens with a fresh evaluator and
// keeps the resulting report
func (ls *LanguageService) Evaluate(tokens []string) (shannon.Report, error) {
	ranker, _, err := ls.readers()
	if err != nil {
		return shannon.Report{}, err
	}

	evaluator := shannon.NewEvaluator(ranker, ls.cfg.Model.Order, ls.logger,
		shannon.WithMaxEntropy(ls.cfg.Evaluation.MaxEntropy),
		shannon.WithTopRanks(ls.cfg.Evaluation.TopRanks),
	)
	if err := evaluator.Play(tokens); err != nil {
		return shannon.Report{}, fmt.Errorf("evaluation failed: %w", err)
	}

	report := evaluator.Report()
	ls.metrics.ObserveEvaluation(report.Total, report.Skipped)

	ls.mu.Lock()
	ls.report = &report
	ls.mu.Unlock()

	ls.logger.Info("Evaluation complete",
		zap.String("run_id", report.RunID),
		zap.Int64("total", report.Total),
		zap.Float64("entropy", report.Entropy),
		zap.Float64("perplexity", report.Perplexity),
		zap.Float64("redundancy", report.Redundancy),
	)
	return report, nil
}

// LastReport returns the most recent evaluation report
func (ls *LanguageService) LastReport() (shannon.Report, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if ls.report == nil {
		return shannon.Report{}, ErrNoEvaluation
	}
	return *ls.report, nil
}

// Predict ranks the next tokens after phrase, returning at most limit
// candidates when limit is positive
func (ls *LanguageService) Predict(phrase string, limit int) (ngram.Prediction, error) {
	ranker, _, err := ls.readers()
	if err != nil {
		return ngram.Prediction{}, err
	}

	prediction := ranker.PredictFromPhrase(ls.Tokenize(phrase))
	if limit > 0 && len(prediction.Candidates) > limit {
		prediction.Candidates = prediction.Candidates[:limit]
	}
	ls.metrics.ObservePrediction(len(prediction.Candidates) > 0)

	ls.logger.Debug("Prediction",
		zap.String("context", prediction.Context.String()),
		zap.Int("candidates", len(prediction.Candidates)),
	)
	return prediction, nil
}

// Correct spell-checks sentence word by word
func (ls *LanguageService) Correct(sentence string) (CorrectionResult, error) {
	_, corrector, err := ls.readers()
	if err != nil {
		return CorrectionResult{}, err
	}
	if corrector == nil {
		return CorrectionResult{}, ErrCorrectionUnavailable
	}

	start := time.Now()
	tokens := corrector.CorrectSentenceDetailed(sentence)

	words := make([]string, len(tokens))
	changed := 0
	for i, t := range tokens {
		words[i] = t.Corrected
		if t.Changed {
			changed++
		}
	}
	ls.metrics.ObserveCorrection(len(tokens), changed, time.Since(start))

	return CorrectionResult{
		Original:  sentence,
		Corrected: strings.Join(words, " "),
		Tokens:    tokens,
	}, nil
}

// AddKnownWord protects word from correction
func (ls *LanguageService) AddKnownWord(ctx context.Context, word string) error {
	corrector, err := ls.spellChecker()
	if err != nil {
		return err
	}
	return corrector.AddKnownWord(ctx, word)
}

// RemoveKnownWord lifts the protection of word
func (ls *LanguageService) RemoveKnownWord(ctx context.Context, word string) error {
	corrector, err := ls.spellChecker()
	if err != nil {
		return err
	}
	return corrector.RemoveKnownWord(ctx, word)
}

func (ls *LanguageService) spellChecker() (*spelling.Corrector, error) {
	_, corrector, err := ls.readers()
	if err != nil {
		return nil, err
	}
	if corrector == nil {
		return nil, ErrCorrectionUnavailable
	}
	return corrector, nil
}

// Stats returns statistics about the model
func (ls *LanguageService) Stats() ServiceStats {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ServiceStats{
		Granularity: ls.tokenizer.Granularity(),
		Built:       ls.ranker != nil,
		Store:       ls.store.Stats(),
		Evaluation:  ls.report,
	}
}

// LoadCorpus returns the training and test token streams described by cfg.
// A raw path (file or directory of .txt files) is cleaned and split by ratio;
// otherwise the train and test files are read as already-clean text. An empty
// test path yields no test tokens.
func (ls *LanguageService) LoadCorpus(cfg config.CorpusConfig) (train, test []string, err error) {
	if cfg.RawPath != "" {
		raw, err := readRaw(cfg.RawPath)
		if err != nil {
			return nil, nil, err
		}
		trainText, testText := corpus.SplitText(corpus.Clean(raw), cfg.SplitRatio)
		ls.logger.Info("Raw corpus split",
			zap.String("path", cfg.RawPath),
			zap.Int("train_chars", len(trainText)),
			zap.Int("test_chars", len(testText)),
		)
		return ls.tokenizer.Tokenize(trainText), ls.tokenizer.Tokenize(testText), nil
	}

	train, err = ls.readTokens(cfg.TrainPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.TestPath != "" {
		test, err = ls.readTokens(cfg.TestPath)
		if err != nil {
			return nil, nil, err
		}
	}
	return train, test, nil
}

// readTokens reads an already-clean corpus file at the model granularity
func (ls *LanguageService) readTokens(path string) ([]string, error) {
	if ls.tokenizer.Granularity() == "word" {
		return corpus.LoadTokens(path)
	}
	text, err := corpus.ReadText(path)
	if err != nil {
		return nil, err
	}
	return ls.tokenizer.Tokenize(text), nil
}

func readRaw(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat raw corpus: %w", err)
	}
	if info.IsDir() {
		return corpus.LoadDir(path, 2)
	}
	return corpus.ReadText(path)
}
