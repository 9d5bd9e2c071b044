package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/internal/storage/memory"
	pgstorage "github.com/holeinone/coursecal/internal/storage/postgres"
	sqlitestorage "github.com/holeinone/coursecal/internal/storage/sqlite"
)

func createStorageBackend(storageCfg config.StorageConfig, logsDir string, logger *slog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		logger.Info("Postgres storage backend selected")
		return pgstorage.New(logger), nil

	case "sqlite":
		cfg := sqlitestorage.Config{Path: storageCfg.SQLite.Path}
		if cfg.Path == "" {
			cfg.DumpPath = filepath.Join(logsDir, fmt.Sprintf("coursecal_%s.db", SessionStartTime.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend selected", "path", cfg.Path)
		return backend, nil

	case "memory", "":
		logger.Info("Memory storage backend selected", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func initStorage(logsDir string, logger *slog.Logger) (storage.Backend, error) {
	backend, err := createStorageBackend(config.GetStorageConfig(), logsDir, logger)
	if err != nil {
		return nil, err
	}
	return openBackend(backend)
}

// openBackend runs Init and closes the backend again when Init fails, so a
// half-opened database handle is not left behind.
func openBackend(backend storage.Backend) (storage.Backend, error) {
	if err := backend.Init(); err != nil {
		if cerr := backend.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	return backend, nil
}
