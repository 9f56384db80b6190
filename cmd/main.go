package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"predict-go/internal/config"
	"predict-go/internal/controller"
	"predict-go/internal/handler"
	"predict-go/internal/metrics"
	"predict-go/internal/service"
	"predict-go/internal/service/spelling"
	"predict-go/pkg/mcp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var appConfigPath = flag.String("app", "app.yaml", "Path to app configuration file")
	var serve = flag.Bool("serve", false, "Serve the HTTP and MCP API after training")
	var trainPath = flag.String("train", "", "Training corpus, overrides corpus.train_path")
	var testPath = flag.String("test", "", "Test corpus, overrides corpus.test_path")
	var order = flag.Int("order", 0, "Maximum n-gram order, overrides model.order")
	flag.Parse()

	cfg, err := config.LoadConfig(*appConfigPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Override config from command line if provided
	if *serve {
		cfg.App.Serve = true
	}
	if *trainPath != "" {
		cfg.Corpus.TrainPath = *trainPath
		cfg.Corpus.RawPath = ""
	}
	if *testPath != "" {
		cfg.Corpus.TestPath = *testPath
	}
	if *order != 0 {
		cfg.Model.Order = *order
		if err := cfg.Validate(); err != nil {
			log.Fatal("Invalid order:", err)
		}
	}

	logger, err := newLogger(cfg.App)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully", zap.Any("config", cfg))

	ctx := context.Background()
	known := newKnownWords(ctx, cfg.Redis, logger)

	languageService, err := service.NewLanguageService(cfg, known, metrics.NewMetrics(prometheus.DefaultRegisterer), logger)
	if err != nil {
		logger.Fatal("Failed to create language service", zap.Error(err))
	}

	train, test, err := languageService.LoadCorpus(cfg.Corpus)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	if err := languageService.Train(train); err != nil {
		logger.Fatal("Failed to train", zap.Error(err))
	}
	if err := languageService.Build(ctx); err != nil {
		logger.Fatal("Failed to build language model", zap.Error(err))
	}

	if len(test) > 0 {
		report, err := languageService.Evaluate(test)
		if err != nil {
			logger.Fatal("Failed to evaluate", zap.Error(err))
		}
		fmt.Println("=== Shannon guessing game ===")
		if _, err := report.WriteTo(os.Stdout); err != nil {
			logger.Warn("Failed to print report", zap.Error(err))
		}
	} else {
		logger.Info("No test corpus, skipping evaluation")
	}

	if cfg.App.Serve {
		languageController := controller.NewLanguageController(languageService, logger)
		mcpServer := mcp.NewPredictionServer(languageService, cfg, logger)
		router := handler.SetupRouter(languageController, mcpServer, logger)

		address := fmt.Sprintf(":%d", cfg.App.Port)
		if !cfg.App.Interactive {
			logger.Info("Starting server", zap.Int("port", cfg.App.Port))
			if err := http.ListenAndServe(address, router); err != nil {
				logger.Fatal("Failed to start server", zap.Error(err))
			}
			return
		}

		go func() {
			logger.Info("Starting server", zap.Int("port", cfg.App.Port))
			if err := http.ListenAndServe(address, router); err != nil {
				logger.Error("Server stopped", zap.Error(err))
			}
		}()
	}

	if cfg.App.Interactive {
		if err := runMenu(ctx, os.Stdin, os.Stdout, languageService); err != nil {
			logger.Fatal("Menu failed", zap.Error(err))
		}
	}
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(app.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", app.LogLevel, err)
	}

	cfgZap := zap.NewProductionConfig()
	cfgZap.Level = level
	cfgZap.OutputPaths = app.LogPaths
	return cfgZap.Build()
}

// newKnownWords connects to Redis when configured. The corrector works
// without it, so a failed connection only disables persistence.
func newKnownWords(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) spelling.KnownWords {
	if cfg.Addr == "" {
		logger.Info("Known-word store disabled (redis not configured)")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, known words will not persist",
			zap.String("addr", cfg.Addr),
			zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("Known-word store connected",
		zap.String("addr", cfg.Addr),
		zap.String("key", cfg.Key))
	return spelling.NewRedisKnownWords(client, cfg.Key)
}
