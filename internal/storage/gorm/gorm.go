// Package gormstorage implements storage.Backend on top of GORM. The SQLite
// and Postgres backends embed it and only differ in how the connection is
// opened.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/holeinone/coursecal/internal/database"
	"github.com/holeinone/coursecal/internal/model"
	"github.com/holeinone/coursecal/internal/model/convert"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/pkg/core"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend has no database connection")
	}
	b.deps.Logger.Info("Migrating schema", "dialect", b.deps.DB.Dialector.Name())
	return database.Migrate(b.deps.DB)
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// SaveCourse inserts the course and writes the assigned ID back.
func (b *Backend) SaveCourse(c *core.Course) error {
	row, err := convert.CoreToCourse(*c)
	if err != nil {
		return err
	}
	row.ID = 0

	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	c.ID = row.ID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = row.CreatedAt
	}
	b.deps.Logger.Debug("Course saved", "id", row.ID, "session", row.SessionID)
	return nil
}

// LatestCourse returns the course with the highest ID.
func (b *Backend) LatestCourse() (*core.Course, error) {
	var row model.Course
	err := b.deps.DB.Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNoCourse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest course: %w", err)
	}

	c, err := convert.CourseToCore(row)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
