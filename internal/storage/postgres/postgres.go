// Package postgres implements the storage.Backend interface on PostgreSQL,
// connecting with the db.* configuration keys.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/holeinone/coursecal/internal/database"
	gormstorage "github.com/holeinone/coursecal/internal/storage/gorm"
)

// Backend wraps the GORM backend with a lazily opened Postgres connection.
type Backend struct {
	*gormstorage.Backend
	logger *slog.Logger
}

// New creates a Postgres backend. The connection is opened by Init.
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Init connects to Postgres and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.GetPostgresDB()
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.logger})
	b.logger.Info("Connected to database")
	return b.Backend.Init()
}

// Close closes the connection if Init succeeded.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
