package feed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holeinone/coursecal/pkg/streaming"
)

const maxLineSize = 1 << 20

// ReplaySource reads one envelope per line from a recorded session.
// Blank lines and lines starting with '#' are skipped.
type ReplaySource struct {
	scanner *bufio.Scanner
	closers []io.Closer
	line    int
}

// NewReplaySource reads envelopes from r.
func NewReplaySource(r io.Reader) *ReplaySource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ReplaySource{scanner: sc}
}

// OpenReplayFile opens a recording. Files ending in .gz are decompressed.
func OpenReplayFile(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}

	if !strings.HasSuffix(path, ".gz") {
		src := NewReplaySource(f)
		src.closers = []io.Closer{f}
		return src, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	src := NewReplaySource(gz)
	src.closers = []io.Closer{gz, f}
	return src, nil
}

// Next returns the next envelope, or io.EOF at the end of the recording.
func (s *ReplaySource) Next(ctx context.Context) (streaming.Envelope, error) {
	for {
		if err := ctx.Err(); err != nil {
			return streaming.Envelope{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return streaming.Envelope{}, fmt.Errorf("line %d: %w", s.line+1, err)
			}
			return streaming.Envelope{}, io.EOF
		}
		s.line++

		raw := bytes.TrimSpace(s.scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		var env streaming.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return streaming.Envelope{}, fmt.Errorf("line %d: invalid envelope: %w", s.line, err)
		}
		if env.Type == "" {
			return streaming.Envelope{}, fmt.Errorf("line %d: envelope has no type", s.line)
		}
		return env, nil
	}
}

// Line returns the number of lines consumed so far.
func (s *ReplaySource) Line() int {
	return s.line
}

// Close releases the underlying file, if any.
func (s *ReplaySource) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
