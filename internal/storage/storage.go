// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/holeinone/coursecal/pkg/core"
)

// ErrNoCourse is returned when a backend holds no saved course.
var ErrNoCourse = errors.New("no saved course")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveCourse persists a completed calibration and assigns its ID.
	SaveCourse(c *core.Course) error
	// LatestCourse returns the most recently saved course.
	LatestCourse() (*core.Course, error)
}

// Exportable is an optional interface for storage backends that produce
// a file per saved course.
type Exportable interface {
	GetExportedFilePath() string
}
