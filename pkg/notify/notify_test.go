package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger captures log output for assertions.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Print(format string, args ...any) { l.append(format, args...) }
func (l *testLogger) Error(format string, args ...any) { l.append(format, args...) }

func (l *testLogger) append(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, strings.TrimSpace(format))
	_ = args
}

func TestNew_NoChannels(t *testing.T) {
	svc := New(Params{}, &testLogger{})
	assert.Nil(t, svc, "no channels configured means no service")

	// nil-safe send
	svc.Send(context.Background(), Result{Status: "success"})
}

func TestService_Send_Webhook(t *testing.T) {
	var mu sync.Mutex
	var received string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc := New(Params{WebhookURLs: []string{ts.URL}, TimeoutMs: 2000}, &testLogger{})
	require.NotNil(t, svc)

	svc.Send(context.Background(), Result{
		Status:   "success",
		Command:  "login",
		Role:     "admin",
		Duration: "1m 12s",
		EnvVars:  []string{"QA_ADMIN_EMAIL", "QA_ADMIN_PASSWORD"},
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, received, "testwright login completed")
	assert.Contains(t, received, "role:     admin")
	assert.Contains(t, received, "QA_ADMIN_EMAIL, QA_ADMIN_PASSWORD")
}

func TestService_Send_WebhookFailureLogged(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	log := &testLogger{}
	svc := New(Params{WebhookURLs: []string{ts.URL}, TimeoutMs: 2000}, log)

	svc.Send(context.Background(), Result{Status: "failure", Command: "generate", Error: "agent exited"})

	log.mu.Lock()
	defer log.mu.Unlock()
	require.NotEmpty(t, log.lines, "delivery failure should be logged")
	assert.Contains(t, log.lines[0], "webhook notification failed")
}

func TestService_FormatMessage(t *testing.T) {
	svc := &Service{hostname: "buildbox"}

	msg := svc.formatMessage(Result{Status: "failure", Command: "login", Role: "editor", Error: "codegen aborted"})
	assert.Contains(t, msg, "testwright login failed on buildbox")
	assert.Contains(t, msg, "role:     editor")
	assert.Contains(t, msg, "error:    codegen aborted")
	assert.NotContains(t, msg, "env vars:")
}

func TestResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(Result{Status: "success", Command: "login", Role: "admin", Duration: "30s"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","command":"login","role":"admin","duration":"30s"}`, string(data))
}
