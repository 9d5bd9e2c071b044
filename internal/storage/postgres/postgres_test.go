package postgres

import (
	"testing"

	"github.com/holeinone/coursecal/internal/storage"
	"github.com/stretchr/testify/assert"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestClose_BeforeInit(t *testing.T) {
	b := New(nil)
	assert.NoError(t, b.Close())
}
