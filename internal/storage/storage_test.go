// internal/storage/storage_test.go
package storage_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/holeinone/coursecal/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestErrNoCourse_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading course: %w", storage.ErrNoCourse)

	assert.True(t, errors.Is(err, storage.ErrNoCourse))
	assert.Equal(t, "loading course: no saved course", err.Error())
}
