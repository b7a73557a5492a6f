// Package app wires configuration into a ready service. It is shared by the
// HTTP server and the CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"persona-service/internal/analyst"
	"persona-service/internal/config"
	"persona-service/internal/dataservice"
	"persona-service/internal/lexicon"
	"persona-service/internal/logging"
	"persona-service/internal/service"
)

// App holds the wired components and the resources that need closing.
type App struct {
	Service *service.Service
	Logger  *zap.Logger

	loader *dataservice.Loader
	client *analyst.Client
}

// NewLogger builds the logger described by the logging section.
func NewLogger(cfg *config.Config) *zap.Logger {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		Compress:    cfg.Logging.Compress,
	})
}

// New constructs the service from cfg. The snapshot is not loaded yet.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	lex, err := loadLexicon(cfg.Lexicon.Path, logger)
	if err != nil {
		return nil, err
	}

	loader := dataservice.New(dataservice.Options{
		FilesDir:      cfg.Data.BackendFilesDir,
		UseFiles:      cfg.BackendFilesEnabled(),
		UseSampleData: cfg.Data.UseSampleData,
		APIBaseURL:    cfg.Data.APIBaseURL,
		Timeout:       cfg.RequestTimeout(),
	}, logger)

	a := &App{Logger: logger, loader: loader}

	var remote analyst.Asker
	if cfg.Analyst.Enabled {
		a.client = analyst.NewClient(cfg.Analyst.URL, cfg.Analyst.RequestsPerMinute, cfg.RequestTimeout())
		remote = a.client
		logger.Info("Analyst bot enabled",
			zap.String("url", cfg.Analyst.URL),
			zap.Int("requests_per_minute", cfg.Analyst.RequestsPerMinute))
	}

	a.Service = service.New(loader, lex, analyst.New(remote, logger), logger)
	return a, nil
}

// Close releases idle connections held by the HTTP clients.
func (a *App) Close() {
	a.loader.Close()
	if a.client != nil {
		a.client.Close()
	}
}

func loadLexicon(path string, logger *zap.Logger) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default()
	}
	lex, err := lexicon.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}
	logger.Info("Lexicon loaded", zap.String("path", path))
	return lex, nil
}
