package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"LOG_FILE"`

	TextBackend     string `env:"TEXT_BACKEND" envDefault:"ollama"`
	MaxOutputTokens int    `env:"MAX_OUTPUT_TOKENS" envDefault:"150"`
	OllamaHost      string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel     string `env:"OLLAMA_MODEL" envDefault:"qwen2.5:0.5b"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ClaudeAPIKey    string `env:"CLAUDE_API_KEY"`
	ClaudeModel     string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-haiku-latest"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-latest"`

	ClassifierAPIKey    string        `env:"CLASSIFIER_API_KEY"`
	ClassifierSecretKey string        `env:"CLASSIFIER_SECRET_KEY"`
	ClassifierBaseURL   string        `env:"CLASSIFIER_BASE_URL" envDefault:"https://aip.baidubce.com"`
	ClassifierTokenTTL  time.Duration `env:"CLASSIFIER_TOKEN_TTL" envDefault:"6h"`

	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"sqlite"`
	HistoryDir     string `env:"HISTORY_DIR" envDefault:"history"`
	DBPath         string `env:"DB_PATH" envDefault:"data/wardrobe.db"`
	PhotoPath      string `env:"PHOTO_LOCAL_PATH" envDefault:"data/photos"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("MAX_OUTPUT_TOKENS must be positive, got %d", cfg.MaxOutputTokens)
	}
	return cfg, nil
}
