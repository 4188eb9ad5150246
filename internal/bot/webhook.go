// ABOUTME: HTTP webhook transport for the chat bot.
// ABOUTME: Accepts chat messages as JSON posts and answers with the command reply.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// WebhookTransport serves POST /messages on an HTTP listener.
type WebhookTransport struct {
	addr string
	log  *slog.Logger

	// ready receives the bound address once the listener is up.
	ready chan string
}

// NewWebhookTransport creates a webhook transport listening on addr.
func NewWebhookTransport(addr string, logger *slog.Logger) *WebhookTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookTransport{addr: addr, log: logger, ready: make(chan string, 1)}
}

// Name implements Transport.
func (t *WebhookTransport) Name() string {
	return "webhook"
}

// Ready receives the listener address once Run has bound it.
func (t *WebhookTransport) Ready() <-chan string {
	return t.ready
}

type messageRequest struct {
	Content string `json:"content"`
}

// Handler returns the HTTP handler for the webhook routes.
func (t *WebhookTransport) Handler(h Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("POST /messages", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req messageRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
			return
		}

		reply := h.Handle(r.Context(), req.Content)
		if reply == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	})
	return mux
}

// Run implements Transport.
func (t *WebhookTransport) Run(ctx context.Context, h Handler) error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           t.Handler(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	t.log.Info("webhook listening", "addr", ln.Addr().String())
	t.ready <- ln.Addr().String()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
