// Package http exposes the webhook surface: the chat transport posts one
// inbound message at a time and gets the reply text back in the response.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ledgerbot/internal/bot"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/middleware/ratelimit"
	"ledgerbot/internal/middleware/trace"
	"ledgerbot/internal/notify"
)

const handleTimeout = 15 * time.Second

type Server struct {
	http.Server
	bot     *bot.Handler
	sender  notify.Sender
	limiter *ratelimit.Limiter
}

// WebhookRequest is one inbound chat message as posted by the transport.
type WebhookRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// WebhookResponse carries the reply text back to the transport.
type WebhookResponse struct {
	Reply string `json:"reply"`
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. sender may be nil when no delivery transport is configured.
func NewServer(addr string, botHandler *bot.Handler, sender notify.Sender, logger *applog.Logger, requestsPerMinute int) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		bot:    botHandler,
		sender: sender,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: requestsPerMinute,
		}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /{$}", handleIndex)

	traceMW := trace.NewMiddleware(extractClientIP)
	limitMW := s.limiter.Middleware(rateLimitKey, nil)

	var handler http.Handler = mux
	handler = limitMW(handler)
	handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(handler)
	handler = traceMW.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the server and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "Webhook body rejected",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err)
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "user_id and text are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handleTimeout)
	defer cancel()

	reply := s.bot.Handle(ctx, req.UserID, req.Text, s.sender)
	logger.InfoContext(ctx, "Webhook handled",
		applog.FieldRequestID, trace.GetRequestID(r.Context()),
		applog.FieldUserID, req.UserID)
	writeJSON(w, http.StatusOK, WebhookResponse{Reply: reply})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "ledgerbot",
		"webhook": "POST /webhook",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// rateLimitKey buckets webhook posts by client address; the transport is a
// single trusted caller, so this guards against loops rather than abuse.
func rateLimitKey(r *http.Request) string {
	return extractClientIP(r)
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
