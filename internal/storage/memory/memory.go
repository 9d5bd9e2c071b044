// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/pkg/core"
)

// Backend keeps saved courses in memory and exports each one to JSON.
// Init reloads earlier exports from the output directory.
type Backend struct {
	cfg    config.MemoryConfig
	logger *slog.Logger

	courses        []core.Course
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:    cfg,
		logger: logger,
	}
}

// Init loads previous exports so LatestCourse survives restarts.
// Unreadable files are skipped with a warning.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.cfg.OutputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading output directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isExportFile(entry.Name()) {
			continue
		}
		export, err := readExport(filepath.Join(b.cfg.OutputDir, entry.Name()))
		if err != nil {
			b.logger.Warn("Skipping unreadable course export", "file", entry.Name(), "error", err)
			continue
		}
		b.courses = append(b.courses, export.Course)
		if export.Course.ID > b.idCounter {
			b.idCounter = export.Course.ID
		}
	}

	sort.SliceStable(b.courses, func(i, j int) bool {
		if b.courses[i].CreatedAt.Equal(b.courses[j].CreatedAt) {
			return b.courses[i].ID < b.courses[j].ID
		}
		return b.courses[i].CreatedAt.Before(b.courses[j].CreatedAt)
	})
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SaveCourse assigns the next ID, keeps the course and exports it. A failed
// export leaves the course unsaved and its ID unclaimed.
func (b *Backend) SaveCourse(c *core.Course) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	saved := *c
	saved.ID = b.idCounter + 1

	path, err := b.exportJSON(saved)
	if err != nil {
		return fmt.Errorf("exporting course %d: %w", saved.ID, err)
	}
	b.idCounter = saved.ID
	c.ID = saved.ID
	b.lastExportPath = path
	b.courses = append(b.courses, saved)
	return nil
}

// LatestCourse returns a copy of the most recently saved course.
func (b *Backend) LatestCourse() (*core.Course, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.courses) == 0 {
		return nil, storage.ErrNoCourse
	}
	c := b.courses[len(b.courses)-1]
	return &c, nil
}

// GetExportedFilePath returns the path of the last export written.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Courses returns how many courses the backend holds.
func (b *Backend) Courses() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.courses)
}
