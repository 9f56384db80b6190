package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	App        AppConfig        `yaml:"app"`
	Model      ModelConfig      `yaml:"model"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Corrector  CorrectorConfig  `yaml:"corrector"`
	Redis      RedisConfig      `yaml:"redis"`
	MCP        MCPConfig        `yaml:"mcp"`
}

type AppConfig struct {
	Port        int      `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	LogPaths    []string `yaml:"log_paths"`
	Interactive bool     `yaml:"interactive"`
	Serve       bool     `yaml:"serve"`
}

type ModelConfig struct {
	Order       int    `yaml:"order"`
	Granularity string `yaml:"granularity"` // word or char
}

type CorpusConfig struct {
	TrainPath  string  `yaml:"train_path"`
	TestPath   string  `yaml:"test_path"`
	RawPath    string  `yaml:"raw_path"` // Optional uncleaned text file or directory, split into train and test
	SplitRatio float64 `yaml:"split_ratio"`
}

type EvaluationConfig struct {
	MaxEntropy float64 `yaml:"max_entropy"` // 0 means log2(27)
	TopRanks   int     `yaml:"top_ranks"`
}

type CorrectorConfig struct {
	Smoothing     float64 `yaml:"smoothing"`
	MaxWordLength int     `yaml:"max_word_length"`
	Alphabet      string  `yaml:"alphabet"`
	BloomFPRate   float64 `yaml:"bloom_fp_rate"`
}

// RedisConfig points at the known-word set. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" json:"-"` // Never logged
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// MCPConfig runs the MCP endpoint on its own listener when Port is set;
// otherwise it is mounted on the main router
type MCPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if len(c.App.LogPaths) == 0 {
		c.App.LogPaths = []string{"stdout"}
	}
	if c.Model.Order == 0 {
		c.Model.Order = 5
	}
	if c.Model.Granularity == "" {
		c.Model.Granularity = "word"
	}
	if c.Corpus.SplitRatio == 0 {
		c.Corpus.SplitRatio = 0.8
	}
	if c.Evaluation.TopRanks == 0 {
		c.Evaluation.TopRanks = 5
	}
	if c.Corrector.Smoothing == 0 {
		c.Corrector.Smoothing = 0.1
	}
	if c.Corrector.MaxWordLength == 0 {
		c.Corrector.MaxWordLength = 32
	}
	if c.Corrector.Alphabet == "" {
		c.Corrector.Alphabet = "abcdefghijklmnopqrstuvwxyz"
	}
	if c.Corrector.BloomFPRate == 0 {
		c.Corrector.BloomFPRate = 0.01
	}
	if c.Redis.Key == "" {
		c.Redis.Key = "known_words"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

// Validate checks the values a model cannot be built with
func (c *Config) Validate() error {
	if c.Model.Order < 2 {
		return fmt.Errorf("%w: model.order must be >= 2, got %d", ErrInvalidConfig, c.Model.Order)
	}
	if c.Model.Granularity != "word" && c.Model.Granularity != "char" {
		return fmt.Errorf("%w: unknown model.granularity %q", ErrInvalidConfig, c.Model.Granularity)
	}
	if c.Corpus.SplitRatio <= 0 || c.Corpus.SplitRatio >= 1 {
		return fmt.Errorf("%w: corpus.split_ratio must be in (0,1), got %v", ErrInvalidConfig, c.Corpus.SplitRatio)
	}
	if c.Corrector.Smoothing <= 0 {
		return fmt.Errorf("%w: corrector.smoothing must be > 0, got %v", ErrInvalidConfig, c.Corrector.Smoothing)
	}
	if c.Evaluation.MaxEntropy < 0 {
		return fmt.Errorf("%w: evaluation.max_entropy must be >= 0, got %v", ErrInvalidConfig, c.Evaluation.MaxEntropy)
	}
	if c.App.Port < 0 || c.App.Port > 65535 {
		return fmt.Errorf("%w: app.port out of range: %d", ErrInvalidConfig, c.App.Port)
	}
	return nil
}
