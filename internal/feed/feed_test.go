package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
)

const testPayload = `{"wildfire": [
	{"fips": "06037", "fire_size": 120.5, "LATITUDE": 34.05, "LONGITUDE": -118.24,
	 "tmax": 31.2, "prcp": "0.4", "wind_speed": 5.1, "fmc": 87.2}
]}`

func wsTestServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// stateRecorder collects lifecycle transitions across goroutines.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestRequestSnapshotLatestOnly(t *testing.T) {
	c, err := New(Options{Endpoint: "ws://example.invalid/feed"}, Handlers{})
	require.NoError(t, err)

	c.RequestSnapshot(100)
	c.RequestSnapshot(200)
	c.RequestSnapshot(300)

	select {
	case ts := <-c.requests:
		assert.Equal(t, int64(300), ts, "superseded requests are dropped")
	default:
		t.Fatal("expected a pending request")
	}
	select {
	case ts := <-c.requests:
		t.Fatalf("expected a single pending request, got %d", ts)
	default:
	}
}

func TestRequestBroadcastRoundTrip(t *testing.T) {
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		assert.Equal(t, "data_request", f.Event)

		var body requestBody
		require.NoError(t, json.Unmarshal(f.Data, &body))
		assert.Equal(t, int64(1234567890), body.Time)

		require.NoError(t, conn.WriteJSON(frame{
			Event: "data_broadcast",
			Data:  json.RawMessage(testPayload),
		}))
		// Keep the socket open until the client hangs up.
		_, _, _ = conn.ReadMessage()
	})

	snapshots := make(chan domain.Snapshot, 1)
	c, err := New(Options{Endpoint: wsURL(srv)}, Handlers{
		OnSnapshot: func(s domain.Snapshot, skipped int) {
			assert.Zero(t, skipped)
			snapshots <- s
		},
	})
	require.NoError(t, err)
	c.RequestSnapshot(1234567890)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case snap := <-snapshots:
		require.Len(t, snap.Records, 1)
		rec := snap.Records[0]
		assert.Equal(t, "06037", rec.RegionKey)
		require.NotNil(t, rec.PrecipitationMm)
		assert.Equal(t, 0.4, *rec.PrecipitationMm, "string measurements are coerced")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to stop")
	}
}

func TestReconnectReplaysSelection(t *testing.T) {
	type received struct {
		session int
		time    int64
	}
	got := make(chan received, 4)
	var sessionCount int
	var mu sync.Mutex

	srv := wsTestServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		sessionCount++
		n := sessionCount
		mu.Unlock()

		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		var body requestBody
		if err := json.Unmarshal(f.Data, &body); err != nil {
			return
		}
		got <- received{session: n, time: body.Time}
		if n == 1 {
			// Drop the first session to force a reconnect.
			conn.Close()
			return
		}
		_, _, _ = conn.ReadMessage()
	})

	c, err := New(Options{
		Endpoint:     wsURL(srv),
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}, Handlers{})
	require.NoError(t, err)
	c.RequestSnapshot(42)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	for _, wantSession := range []int{1, 2} {
		select {
		case r := <-got:
			assert.Equal(t, wantSession, r.session)
			assert.Equal(t, int64(42), r.time, "reconnect replays the selected date")
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for session %d request", wantSession)
		}
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	rec := &stateRecorder{}
	c, err := New(Options{
		Endpoint:     "ws://127.0.0.1:1/feed",
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		MaxAttempts:  3,
		PollTimeout:  50 * time.Millisecond,
	}, Handlers{OnState: rec.record})
	require.NoError(t, err)

	err = c.Run(context.Background())

	require.ErrorIs(t, err, ErrRetriesExhausted)
	states := rec.snapshot()
	require.NotEmpty(t, states)
	assert.Equal(t, StateDisconnected, states[len(states)-1], "disconnected is terminal")
	errCount := 0
	for _, s := range states {
		if s == StateError {
			errCount++
		}
	}
	assert.Equal(t, 3, errCount, "one error per failed attempt")
}

func TestPollFallback(t *testing.T) {
	snapshots := make(chan domain.Snapshot, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/poll" {
			// No websocket upgrade here, so every dial fails.
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		assert.Equal(t, "99", r.URL.Query().Get("time"))
		fmt.Fprint(w, testPayload)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Endpoint:     wsURL(srv) + "/feed",
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		MaxAttempts:  1,
	}, Handlers{
		OnSnapshot: func(s domain.Snapshot, _ int) { snapshots <- s },
	})
	require.NoError(t, err)
	c.RequestSnapshot(99)

	err = c.Run(context.Background())
	require.ErrorIs(t, err, ErrRetriesExhausted)

	select {
	case snap := <-snapshots:
		assert.Len(t, snap.Records, 1, "poll transport still delivers data")
	default:
		t.Fatal("expected a snapshot from the poll fallback")
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{}, Handlers{})
	assert.Error(t, err, "endpoint is required")

	_, err = New(Options{Endpoint: "ftp://example.com/feed"}, Handlers{})
	assert.Error(t, err, "unsupported scheme")
}

func TestNewPollTransportDerivesURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{"ws", "ws://feed.example:9000/live", "http://feed.example:9000/poll"},
		{"wss", "wss://feed.example/live", "https://feed.example/poll"},
		{"http passthrough", "http://feed.example/live", "http://feed.example/poll"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newPollTransport(tt.endpoint, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.endpoint)
		})
	}
}

func TestSessionReaderStopsWithSession(t *testing.T) {
	// The server pushes one broadcast and hangs up immediately, so each
	// session dies while its reader still holds an undelivered message.
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(frame{
			Event: "data_broadcast",
			Data:  json.RawMessage(testPayload),
		})
	})

	c, err := New(Options{Endpoint: wsURL(srv)}, Handlers{})
	require.NoError(t, err)
	c.RequestSnapshot(42)

	baseline := runtime.NumGoroutine()
	for i := 0; i < 40; i++ {
		conn, _, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL(srv), nil)
		require.NoError(t, err)
		_ = c.session(context.Background(), conn)
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+3
	}, 2*time.Second, 10*time.Millisecond,
		"reader goroutines must not outlive their sessions")
}

func TestHandleMessageIgnoresUnknownEvents(t *testing.T) {
	called := false
	c, err := New(Options{Endpoint: "ws://example.invalid/feed"}, Handlers{
		OnSnapshot: func(domain.Snapshot, int) { called = true },
	})
	require.NoError(t, err)

	c.handleMessage([]byte(`{"event": "heartbeat", "data": {}}`))
	c.handleMessage([]byte(`not json`))
	c.handleMessage([]byte(`{"event": "data_broadcast", "data": "not an object"}`))

	assert.False(t, called)

	c.handleMessage([]byte(`{"event": "data_broadcast", "data": {"wildfire": []}}`))
	assert.True(t, called, "empty snapshots still propagate")
}
