package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/core"
	applog "ledgerbot/internal/log"
)

// familyAlertMarker identifies fan-out messages. Tests and downstream
// filtering key on this exact phrase.
const familyAlertMarker = "Family expense alert"

// fanOutExpense notifies every other family member about a recorded expense.
// It never fails the originating command: missing sender or missing family
// is a silent skip, per-recipient send failures are logged and swallowed.
func (h *Handler) fanOutExpense(ctx context.Context, req *request, t core.Transaction) {
	if req.sender == nil {
		return
	}

	group, err := h.store.UserFamily(ctx, req.userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Fan-out family lookup failed",
			applog.FieldUserID, req.userID,
			applog.FieldError, err)
		return
	}
	if group == nil {
		return
	}

	members, err := h.store.Members(ctx, group.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Fan-out member lookup failed",
			applog.FieldGroupID, group.ID,
			applog.FieldError, err)
		return
	}

	message, err := h.expenseAlert(ctx, req.userID, members, t)
	if err != nil {
		h.logger.ErrorContext(ctx, "Fan-out message build failed",
			applog.FieldUserID, req.userID,
			applog.FieldError, err)
		return
	}

	sent, failed := 0, 0
	for _, m := range members {
		if m.UserID == req.userID {
			continue
		}
		if err := req.sender.Send(ctx, m.UserID, message); err != nil {
			failed++
			h.logger.ErrorContext(ctx, "Fan-out delivery failed",
				applog.FieldRecipient, m.UserID,
				applog.FieldGroupID, group.ID,
				applog.FieldError, err)
			continue
		}
		sent++
	}
	h.logger.InfoContext(ctx, "Family expense fan-out done",
		applog.FieldGroupID, group.ID,
		applog.FieldSent, sent,
		applog.FieldFailed, failed)
}

func (h *Handler) expenseAlert(ctx context.Context, actorID string, members []core.FamilyMember, t core.Transaction) (string, error) {
	actorLabel := core.RoleMember.Label()
	for _, m := range members {
		if m.UserID == actorID {
			actorLabel = m.DisplayName()
			break
		}
	}

	month, err := h.store.MonthSummary(ctx, actorID, time.Now())
	if err != nil {
		return "", fmt.Errorf("month summary: %w", err)
	}
	debt, err := h.calc.DailyDebt(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("daily debt: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔔 %s\n\n%s spent %s on %s",
		familyAlertMarker, actorLabel, t.Amount.Format(), t.Category)
	if t.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s", t.Note)
	}
	fmt.Fprintf(&b, "\n\n💸 Their month-to-date expense: %s\n🏠 Their daily obligations: %s",
		month.Expense.Format(), debt.DailyTotal.Format())
	return b.String(), nil
}
