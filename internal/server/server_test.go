package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdulachik/trendbot/internal/digest"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/abdulachik/trendbot/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func postWebhook(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSends int
	}{
		{"start with trailing text", `{"update_id":1,"message":{"text":"/start please"}}`, 1},
		{"start upper case", `{"message":{"text":"/START"}}`, 1},
		{"start inside sentence", `{"message":{"text":"please /Start now"}}`, 1},
		{"plain text", `{"message":{"text":"hello"}}`, 0},
		{"no message", `{}`, 0},
		{"message without text", `{"message":{"message_id":7}}`, 0},
		{"malformed json", `{"message":`, 0},
		{"not an object", `[1,2,3]`, 0},
		{"empty body", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			s := New(Config{Notifier: n})

			rec := postWebhook(t, s.Handler(), tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "ok", rec.Body.String())
			assert.Equal(t, tt.wantSends, n.count())
		})
	}
}

func TestWebhook_SendsGreeting(t *testing.T) {
	n := &recordingNotifier{}
	s := New(Config{Notifier: n})

	postWebhook(t, s.Handler(), `{"message":{"text":"/start"}}`)

	require.Len(t, n.sent, 1)
	assert.Equal(t, digest.Greeting, n.sent[0].Text)
	assert.Equal(t, notify.KindGreeting, n.sent[0].Kind)
}

func TestWebhook_CustomGreeting(t *testing.T) {
	n := &recordingNotifier{}
	s := New(Config{Notifier: n, Greeting: "hi"})

	postWebhook(t, s.Handler(), `{"message":{"text":"/start"}}`)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "hi", n.sent[0].Text)
}

func TestWebhook_SendFailureStillOK(t *testing.T) {
	n := &recordingNotifier{err: errors.New("bot was blocked by the user")}
	health := scheduler.NewHealth()
	s := New(Config{Notifier: n, Health: health})

	rec := postWebhook(t, s.Handler(), `{"message":{"text":"/start"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, 1, n.count())
	assert.False(t, health.GetStatus(scheduler.ComponentTelegram).Healthy)
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	n := &recordingNotifier{}
	s := New(Config{Notifier: n})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, n.count())
}

func TestLiveness(t *testing.T) {
	s := New(Config{Notifier: &recordingNotifier{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LivenessText, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestLiveness_UnknownPath(t *testing.T) {
	s := New(Config{Notifier: &recordingNotifier{}})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		health := scheduler.NewHealth()
		health.SetHealthy(scheduler.ComponentTrends, "fetched 10 trends")
		s := New(Config{Notifier: &recordingNotifier{}, Health: health})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]scheduler.HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body[scheduler.ComponentTrends].Healthy)
		assert.Equal(t, "fetched 10 trends", body[scheduler.ComponentTrends].Message)
	})

	t.Run("unhealthy", func(t *testing.T) {
		health := scheduler.NewHealth()
		health.SetHealthy(scheduler.ComponentTrends, "ok")
		health.SetUnhealthy(scheduler.ComponentTelegram, errors.New("chat not found"))
		s := New(Config{Notifier: &recordingNotifier{}, Health: health})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "chat not found")
	})
}

func TestServer_Run(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := New(Config{Addr: addr, Notifier: &recordingNotifier{}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
