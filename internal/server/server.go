package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abdulachik/trendbot/internal/digest"
	"github.com/abdulachik/trendbot/internal/notify"
	"github.com/abdulachik/trendbot/internal/scheduler"
	tele "gopkg.in/telebot.v4"
)

const (
	// LivenessText is the body served on GET /.
	LivenessText = "Trending bot is running ✅"

	startCommand    = "/start"
	maxWebhookBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server serves the Telegram webhook plus liveness and health routes.
type Server struct {
	notifier notify.Notifier
	health   *scheduler.Health
	greeting string
	http     *http.Server
}

// Config holds server configuration.
type Config struct {
	Addr     string
	Notifier notify.Notifier
	Health   *scheduler.Health // nil disables component reporting on /healthz
	Greeting string            // Defaults to digest.Greeting
}

// New creates a new server.
func New(cfg Config) *Server {
	greeting := cfg.Greeting
	if greeting == "" {
		greeting = digest.Greeting
	}

	health := cfg.Health
	if health == nil {
		health = scheduler.NewHealth()
	}

	s := &Server{
		notifier: cfg.Notifier,
		health:   health,
		greeting: greeting,
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleLiveness)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	return mux
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return ctx.Err()
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(LivenessText))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.health.IsOverallHealthy() {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(s.health.GetAllStatuses()); err != nil {
		slog.Warn("failed to write health response", "error", err)
	}
}

// handleWebhook answers every update with 200 ok so Telegram never redelivers.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer writeOK(w)

	var update tele.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&update); err != nil {
		slog.Warn("ignoring malformed webhook update", "error", err)
		return
	}

	if update.Message == nil {
		slog.Debug("ignoring update without message", "update_id", update.ID)
		return
	}

	if !isStartCommand(update.Message.Text) {
		return
	}

	slog.Info("received start command", "update_id", update.ID)
	err := s.notifier.Send(r.Context(), notify.Notification{
		Kind: notify.KindGreeting,
		Text: s.greeting,
	})
	if err != nil {
		s.health.SetUnhealthy(scheduler.ComponentTelegram, err)
		slog.Error("failed to send greeting", "error", err)
		return
	}
	s.health.SetHealthy(scheduler.ComponentTelegram, "last send delivered")
}

// isStartCommand matches "/start" anywhere in the text, ignoring case.
func isStartCommand(text string) bool {
	return strings.Contains(strings.ToLower(text), startCommand)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
