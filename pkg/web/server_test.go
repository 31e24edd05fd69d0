package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwright/testwright/pkg/progress"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	t.Cleanup(hub.Close)

	s := NewServer(ServerConfig{Role: "admin", BaseURL: "https://app.example.com"}, hub, NewBuffer(100))

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/api/status", s.handleStatus)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func TestServer_Index(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var body strings.Builder
	_, err = bufio.NewReader(resp.Body).WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "role: admin")
	assert.Contains(t, body.String(), "https://app.example.com")
}

func TestServer_IndexNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Status(t *testing.T) {
	s, ts := newTestServer(t)
	s.buffer.Add(NewOutputEvent(progress.PhaseAgent, "x"))

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, "https://app.example.com", got.BaseURL)
	assert.Equal(t, 1, got.Events)
}

func TestServer_StatusMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/status", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_EventsReplayAndStream(t *testing.T) {
	s, ts := newTestServer(t)

	// history before the client connects
	s.buffer.Add(NewOutputEvent(progress.PhaseRecord, "recorded login"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	readEvent := func() Event {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var e Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &e))
			return e
		}
	}

	replayed := readEvent()
	assert.Equal(t, "recorded login", replayed.Text, "history replayed first")

	// live event after connect
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.hub.Broadcast(NewSignalEvent(progress.PhaseAgent, "COMPLETED"))
	}()

	live := readEvent()
	assert.Equal(t, EventTypeSignal, live.Type)
	assert.Equal(t, "COMPLETED", live.Signal)
}

func TestServer_StartAndStop(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	s := NewServer(ServerConfig{Port: 0}, hub, NewBuffer(10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
