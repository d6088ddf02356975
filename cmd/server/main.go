package main

import (
	"time"

	"github.com/xaenox/faq-bot/internal/ai"
	"github.com/xaenox/faq-bot/internal/bot"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/matcher"
	"github.com/xaenox/faq-bot/internal/server"
	"github.com/xaenox/faq-bot/internal/storage"
	"github.com/xaenox/faq-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the generative fallback
	responder := ai.NewOpenAIResponder(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		logger,
	)

	// Initialize the resolution engine
	m := matcher.New(store, cfg.Chat.MinOverlap, logger)
	eng := engine.New(store, m, responder, cfg.Chat.HistoryLimit, logger)

	// Start the Telegram adapter if configured
	if cfg.Telegram.Enabled {
		b, err := bot.New(cfg.Telegram.Token, eng, store, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(); err != nil {
				logger.Error("Bot error", zap.Error(err))
			}
		}()
	}

	// Start the HTTP API
	srv := server.New(eng, store, logger)
	if err := srv.Run(cfg.Server.Host, cfg.Server.Port); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
