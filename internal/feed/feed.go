// Package feed maintains the connection to the snapshot server: a websocket
// carrying date requests upstream and snapshot broadcasts downstream, with an
// HTTP poll fallback while the socket is unavailable.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
)

// ErrRetriesExhausted is returned by Run when every reconnect attempt failed.
var ErrRetriesExhausted = errors.New("feed: reconnect attempts exhausted")

// State describes a lifecycle transition reported through Handlers.OnState.
type State int

const (
	// StateConnected fires when a websocket session is established.
	StateConnected State = iota
	// StateError fires on a transient dial or read failure.
	StateError
	// StateDisconnected fires once, when the client gives up.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Handlers receives feed events. Callbacks run on the client's goroutine and
// must not block; nil callbacks are skipped.
type Handlers struct {
	// OnSnapshot delivers each parsed snapshot with the count of records
	// the parser skipped.
	OnSnapshot func(domain.Snapshot, int)
	// OnState reports lifecycle transitions.
	OnState func(State)
}

// Options configures a Client. Zero values take the defaults matching the
// server's expected reconnect policy.
type Options struct {
	// Endpoint is the websocket URL of the snapshot feed.
	Endpoint string
	// InitialDelay is the first reconnect delay. Default 1s.
	InitialDelay time.Duration
	// MaxDelay caps the reconnect delay. Default 5s.
	MaxDelay time.Duration
	// MaxAttempts bounds consecutive failed connects before giving up.
	// Default 5.
	MaxAttempts int
	// PollTimeout bounds each fallback poll request. Default 10s.
	PollTimeout time.Duration
	Logger      *slog.Logger
}

const noRequest = math.MinInt64

// Client runs the feed connection. Requests are latest-only: a new date
// request supersedes any not yet sent, and there is no correlation between a
// request and the snapshot that answers it.
type Client struct {
	opts     Options
	logger   *slog.Logger
	handlers Handlers
	poll     *pollTransport

	requests chan int64
	last     atomic.Int64
}

// New builds a feed client. Run must be called to start it.
func New(opts Options, handlers Handlers) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("feed: endpoint is required")
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	poll, err := newPollTransport(opts.Endpoint, opts.PollTimeout)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:     opts,
		logger:   opts.Logger,
		handlers: handlers,
		poll:     poll,
		requests: make(chan int64, 1),
	}
	c.last.Store(noRequest)
	return c, nil
}

// RequestSnapshot asks the server for the snapshot at the given Unix time.
// Only the most recent unsent request survives; callers never block.
func (c *Client) RequestSnapshot(unixSeconds int64) {
	c.last.Store(unixSeconds)
	for {
		select {
		case c.requests <- unixSeconds:
			return
		default:
			// Drop the superseded request and retry the send.
			select {
			case <-c.requests:
			default:
			}
		}
	}
}

// Run dials the feed and serves it until ctx is cancelled or the reconnect
// budget is spent. Each failed connect also tries one poll-transport fetch so
// a flapping socket still produces data.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	delay := c.opts.InitialDelay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.opts.Endpoint, nil)
		if err != nil {
			attempts++
			c.logger.Warn("feed dial failed",
				"error", err,
				"attempt", attempts,
				"max_attempts", c.opts.MaxAttempts,
			)
			c.notify(StateError)
			c.pollFallback(ctx)
			if attempts >= c.opts.MaxAttempts {
				c.notify(StateDisconnected)
				return fmt.Errorf("%w: %d attempts", ErrRetriesExhausted, attempts)
			}
			if !sleepWithContext(ctx, delay) {
				return ctx.Err()
			}
			delay = nextDelay(delay, c.opts.MaxDelay)
			continue
		}

		attempts = 0
		delay = c.opts.InitialDelay
		c.notify(StateConnected)

		err = c.session(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("feed session ended", "error", err)
		c.notify(StateError)
		if !sleepWithContext(ctx, delay) {
			return ctx.Err()
		}
		delay = nextDelay(delay, c.opts.MaxDelay)
	}
}

// session serves one established websocket until it fails or ctx ends. The
// latest requested date is replayed on entry so a reconnect restores the
// user's selection.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	// The reader must not outlive this session: a write failure returns
	// early, and a reader parked on the msgs send would otherwise block
	// until the Run context ends.
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- msg:
			case <-sctx.Done():
				return
			}
		}
	}()

	if ts := c.last.Load(); ts != noRequest {
		if err := writeRequest(conn, ts); err != nil {
			return fmt.Errorf("replay request: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return ctx.Err()
		case ts := <-c.requests:
			if err := writeRequest(conn, ts); err != nil {
				return fmt.Errorf("send request: %w", err)
			}
		case err := <-readErr:
			return err
		case msg := <-msgs:
			c.handleMessage(msg)
		}
	}
}

func (c *Client) handleMessage(msg []byte) {
	var f frame
	if err := json.Unmarshal(msg, &f); err != nil {
		c.logger.Warn("feed frame not parseable", "error", err)
		return
	}
	if f.Event != eventBroadcast {
		return
	}
	snap, skipped, err := domain.ParseSnapshot(f.Data)
	if err != nil {
		c.logger.Warn("snapshot not parseable", "error", err)
		return
	}
	if c.handlers.OnSnapshot != nil {
		c.handlers.OnSnapshot(snap, skipped)
	}
}

// pollFallback fetches the pending request over HTTP when the socket is
// down. A poll failure is logged and swallowed; the reconnect loop already
// owns the error budget.
func (c *Client) pollFallback(ctx context.Context) {
	ts := c.last.Load()
	if ts == noRequest {
		return
	}
	snap, skipped, err := c.poll.fetch(ctx, ts)
	if err != nil {
		c.logger.Warn("poll fallback failed", "error", err)
		return
	}
	c.logger.Info("snapshot served by poll fallback", "records", len(snap.Records))
	if c.handlers.OnSnapshot != nil {
		c.handlers.OnSnapshot(snap, skipped)
	}
}

func (c *Client) notify(s State) {
	if c.handlers.OnState != nil {
		c.handlers.OnState(s)
	}
}

func nextDelay(current, maxDelay time.Duration) time.Duration {
	next := current * 2
	if next > maxDelay {
		return maxDelay
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
