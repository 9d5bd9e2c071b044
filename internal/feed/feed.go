// Package feed provides transports that deliver pose-feed envelopes to the
// calibration service: a live WebSocket client and a JSON-lines replay
// reader for recorded sessions.
package feed

import (
	"context"
	"errors"

	"github.com/holeinone/coursecal/pkg/streaming"
)

// ErrClosed is returned by Next after the source has been closed.
var ErrClosed = errors.New("feed closed")

// Source yields envelopes in the order the feed produced them.
// Next returns io.EOF when a finite source is exhausted.
type Source interface {
	Next(ctx context.Context) (streaming.Envelope, error)
	Close() error
}

// Replier is implemented by sources that can answer the feed, such as the
// WebSocket client sending acks back to the tracker.
type Replier interface {
	Reply(v any) error
}
