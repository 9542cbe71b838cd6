// Package bot maps inbound chat text onto ledger operations and renders
// reply text. One entry point: Handle(ctx, userID, text, sender).
//
// Dispatch is an ordered list of recognizers evaluated first-match-wins.
// Exact keywords go first, parameterized commands after; anything left over
// gets the unrecognized-command reply.
package bot

import (
	"context"
	"strings"
	"time"

	"ledgerbot/internal/cache"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/notify"
	"ledgerbot/internal/storage"
)

const (
	seenUserCacheSize = 4096
	seenUserCacheTTL  = 15 * time.Minute
)

type Handler struct {
	store  *storage.SQLiteRepository
	calc   *metrics.Calculator
	logger *applog.Logger
	seen   *cache.LRUCache[struct{}]
	routes []route
}

// request carries one inbound message through the recognizer chain.
type request struct {
	userID string
	text   string
	sender notify.Sender
}

// route tries to recognize and execute one command shape. The bool reports
// whether the route claimed the message.
type route func(ctx context.Context, req *request) (string, bool)

func New(store *storage.SQLiteRepository, calc *metrics.Calculator, logger *applog.Logger) *Handler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	h := &Handler{
		store:  store,
		calc:   calc,
		logger: logger.WithComponent(applog.ComponentBot),
		seen:   cache.NewLRUCache[struct{}](seenUserCacheSize, seenUserCacheTTL),
	}
	h.routes = []route{
		h.cmdExact,
		h.cmdTransaction,
		h.cmdObligationPlan,
		h.cmdObligationFlat,
		h.cmdDelete,
		h.cmdCreateFamily,
		h.cmdJoinFamily,
		h.cmdNickname,
		h.cmdHistory,
		h.cmdStats,
		h.cmdBudget,
	}
	return h
}

// Handle interprets one inbound message and returns the reply text. sender
// is only used for family expense notifications and may be nil.
func (h *Handler) Handle(ctx context.Context, userID, text string, sender notify.Sender) string {
	if _, ok := h.seen.Get(userID); !ok {
		if err := h.store.EnsureUser(ctx, userID); err != nil {
			h.logger.ErrorContext(ctx, "Failed to ensure user",
				applog.FieldUserID, userID,
				applog.FieldError, err)
			return replyInternalError
		}
		h.seen.Set(userID, struct{}{})
	}

	req := &request{
		userID: userID,
		text:   strings.TrimSpace(text),
		sender: sender,
	}
	for _, r := range h.routes {
		if reply, ok := r(ctx, req); ok {
			return reply
		}
	}
	return replyUnrecognized
}

// fail logs a storage failure and yields the generic internal-error reply.
// User mistakes never come through here, only infrastructure faults.
func (h *Handler) fail(ctx context.Context, op string, err error) string {
	h.logger.ErrorContext(ctx, "Command failed",
		applog.FieldCommand, op,
		applog.FieldError, err)
	return replyInternalError
}
