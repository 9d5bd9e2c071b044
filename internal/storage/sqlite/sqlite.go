// Package sqlitestorage implements the storage.Backend interface on SQLite.
// It wraps the GORM backend via composition. With an empty path the database
// lives in memory and is dumped to DumpPath via VACUUM INTO on Close.
package sqlitestorage

import (
	"fmt"
	"log/slog"

	"github.com/holeinone/coursecal/internal/database"
	gormstorage "github.com/holeinone/coursecal/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path     string // database file; empty means in-memory
	DumpPath string // where to dump an in-memory database on Close
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg    Config
	logger *slog.Logger
}

// New opens the SQLite database and creates the backend.
func New(cfg Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: logger}),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Close dumps an in-memory database if configured, then closes it.
func (b *Backend) Close() error {
	if b.cfg.Path == "" && b.cfg.DumpPath != "" {
		if err := database.DumpMemoryDBToDisk(b.DB(), b.cfg.DumpPath); err != nil {
			b.logger.Error("Error dumping to disk", "error", err)
		} else {
			b.logger.Info("Dumped in-memory database to disk", "path", b.cfg.DumpPath)
		}
	}
	return b.Backend.Close()
}
