package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/pkg/streaming"
)

const (
	recvChSize   = 1024
	sendChSize   = 256
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Client receives envelopes from the tracker over a WebSocket. It has a
// single write goroutine and one read goroutine per underlying connection,
// and redials with exponential backoff when the connection drops.
type Client struct {
	mu           sync.Mutex
	conn         *ws.Conn
	reconnecting bool
	closed       bool
	err          error

	recvCh chan streaming.Envelope
	sendCh chan []byte
	done   chan struct{} // closed on shutdown

	cfg    config.FeedConfig
	logger *slog.Logger
}

// Dial connects to the feed and starts the read and write loops.
func Dial(ctx context.Context, cfg config.FeedConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}

	c := &Client{
		recvCh: make(chan streaming.Envelope, recvChSize),
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
		cfg:    cfg,
		logger: logger,
	}

	conn, err := c.dialOnce(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	go c.writeLoop()
	go c.readLoop(conn)

	logger.Info("Connected to pose feed", "url", cfg.URL)
	return c, nil
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *Client) dialOnce(ctx context.Context) (*ws.Conn, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.cfg.Secret != "" {
		q := u.Query()
		q.Set("secret", c.cfg.Secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := ws.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// Next blocks until an envelope arrives, ctx is done or the client closes.
// Envelopes already received are delivered before the close is reported.
func (c *Client) Next(ctx context.Context) (streaming.Envelope, error) {
	select {
	case env := <-c.recvCh:
		return env, nil
	default:
	}

	select {
	case env := <-c.recvCh:
		return env, nil
	case <-ctx.Done():
		return streaming.Envelope{}, ctx.Err()
	case <-c.done:
		return streaming.Envelope{}, c.closeErr()
	}
}

// Reply marshals v and queues it for the write loop. Drops if the queue is full.
func (c *Client) Reply(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	select {
	case <-c.done:
		return c.closeErr()
	default:
	}

	select {
	case c.sendCh <- data:
		return nil
	default:
		c.logger.Warn("WebSocket send channel full, dropping reply")
		return nil
	}
}

// writeLoop drains sendCh for the lifetime of the client, always writing
// to the current connection.
func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.sendCh:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()

			if conn == nil {
				c.logger.Debug("No connection, dropping reply")
				continue
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("WebSocket SetWriteDeadline error", "error", err)
				go c.reconnect(conn)
				continue
			}
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				go c.reconnect(conn)
			}
		}
	}
}

// readLoop decodes envelopes from conn until it fails.
func (c *Client) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.reconnect(conn)
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil || env.Type == "" {
			c.logger.Debug("Ignoring malformed feed message", "raw", string(message))
			continue
		}

		select {
		case c.recvCh <- env:
		case <-c.done:
			return
		}
	}
}

// reconnect replaces failed with a fresh connection. Only the first caller
// for a given connection does the work.
func (c *Client) reconnect(failed *ws.Conn) {
	c.mu.Lock()
	if c.closed || c.reconnecting || c.conn != failed {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.conn = nil
	c.mu.Unlock()
	_ = failed.Close()

	backoff := c.cfg.ReconnectDelay
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Reconnecting to pose feed", "attempt", attempt)
		conn, err := c.dialOnce(context.Background())
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.reconnecting = false
		c.mu.Unlock()

		c.logger.Info("Pose feed reconnected", "attempt", attempt)
		go c.readLoop(conn)
		return
	}

	c.logger.Error("Pose feed reconnect failed after max attempts", "maxAttempts", maxReconnect)
	c.shutdown(fmt.Errorf("reconnect failed after %d attempts", maxReconnect))
}

func (c *Client) shutdown(err error) *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.err = err
	close(c.done)
	conn := c.conn
	c.conn = nil
	return conn
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return ErrClosed
}

// Close sends a WebSocket close frame and shuts down all goroutines.
func (c *Client) Close() error {
	conn := c.shutdown(nil)
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	return conn.Close()
}
