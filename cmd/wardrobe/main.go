package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/wardrobe/internal/classifier"
	"github.com/vbonduro/wardrobe/internal/composer"
	"github.com/vbonduro/wardrobe/internal/config"
	"github.com/vbonduro/wardrobe/internal/db"
	"github.com/vbonduro/wardrobe/internal/history"
	filehistory "github.com/vbonduro/wardrobe/internal/history/file"
	sqlitehistory "github.com/vbonduro/wardrobe/internal/history/sqlite"
	"github.com/vbonduro/wardrobe/internal/logging"
	"github.com/vbonduro/wardrobe/internal/photostore/local"
	"github.com/vbonduro/wardrobe/internal/service"
	"github.com/vbonduro/wardrobe/internal/textgen"
	"github.com/vbonduro/wardrobe/internal/textgen/claude"
	"github.com/vbonduro/wardrobe/internal/textgen/gemini"
	"github.com/vbonduro/wardrobe/internal/textgen/ollama"
	"github.com/vbonduro/wardrobe/internal/textgen/openai"
	"github.com/vbonduro/wardrobe/internal/web"
	"github.com/vbonduro/wardrobe/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGen()

	hist, closeHist, err := newHistoryStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeHist()

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return err
	}

	outfitService := service.NewOutfitService(
		newClassifier(cfg, logger),
		composer.New(gen, cfg.MaxOutputTokens),
		hist,
		photoStg,
		logger,
	)
	server := web.NewServer(outfitService, templates.FS, logger)
	return server.ListenAndServe(ctx, cfg.ListenAddr)
}

func newGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (textgen.Generator, func(), error) {
	noop := func() {}
	switch cfg.TextBackend {
	case "openai":
		logger.Info("using OpenAI text backend", "model", cfg.OpenAIModel)
		return openai.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), noop, nil
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, nil, errors.New("CLAUDE_API_KEY is required when TEXT_BACKEND=claude")
		}
		logger.Info("using Claude text backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeGenerator(cfg.ClaudeAPIKey, cfg.ClaudeModel), noop, nil
	case "gemini":
		g, err := gemini.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using Gemini text backend", "model", cfg.GeminiModel)
		return g, func() { closeWithLog(g, "gemini client", logger) }, nil
	default:
		logger.Info("using Ollama text backend", "model", cfg.OllamaModel)
		return ollama.NewOllamaGenerator(cfg.OllamaHost, cfg.OllamaModel), noop, nil
	}
}

// newClassifier returns nil when no key pair is configured; image requests
// are then refused.
func newClassifier(cfg *config.Config, logger *slog.Logger) service.ClothingClassifier {
	if cfg.ClassifierAPIKey == "" || cfg.ClassifierSecretKey == "" {
		logger.Warn("CLASSIFIER_API_KEY or CLASSIFIER_SECRET_KEY not set, image recommendations disabled")
		return nil
	}
	return classifier.New(cfg.ClassifierAPIKey, cfg.ClassifierSecretKey, classifier.Options{
		BaseURL:  cfg.ClassifierBaseURL,
		TokenTTL: cfg.ClassifierTokenTTL,
	})
}

func newHistoryStore(cfg *config.Config, logger *slog.Logger) (history.Store, func(), error) {
	if cfg.HistoryBackend == "file" {
		logger.Info("using file history backend", "dir", cfg.HistoryDir)
		s, err := filehistory.NewFileStore(cfg.HistoryDir)
		return s, func() {}, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, nil, err
	}
	logger.Info("using sqlite history backend", "path", cfg.DBPath)
	return sqlitehistory.NewSQLiteStore(database), func() { closeWithLog(database, "database", logger) }, nil
}

func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
