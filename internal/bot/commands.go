package bot

import (
	"context"
	"strings"
	"time"

	"ledgerbot/internal/core"
	applog "ledgerbot/internal/log"
)

// cmdExact handles the keyword commands that take no parameters.
func (h *Handler) cmdExact(ctx context.Context, req *request) (string, bool) {
	switch strings.ToLower(req.text) {
	case "help", "?":
		return helpText, true
	case "init":
		return initGuide, true
	case "today":
		return h.todayReport(ctx, req.userID), true
	case "month":
		return h.monthReport(ctx, req.userID), true
	case "recurring", "obligations", "loans", "debts", "fixed":
		return h.obligationsReport(ctx, req.userID), true
	case "family":
		return h.familyView(ctx, req.userID), true
	case "members":
		return h.membersView(ctx, req.userID), true
	case "family-debt":
		return h.familyDebtView(ctx, req.userID), true
	case "leave-family":
		return h.leaveFamily(ctx, req.userID), true
	}
	return "", false
}

func (h *Handler) cmdTransaction(ctx context.Context, req *request) (string, bool) {
	p, ok := matchTransaction(req.text)
	if !ok {
		return "", false
	}

	t := core.Transaction{
		UserID:   req.userID,
		Kind:     p.Kind,
		Amount:   p.Amount,
		Category: p.Category,
		Note:     p.Note,
	}
	if _, err := h.store.AddTransaction(ctx, t); err != nil {
		return h.fail(ctx, "transaction", err), true
	}

	if p.Kind == core.Expense {
		h.fanOutExpense(ctx, req, t)
	}
	return renderTransactionAck(t), true
}

func (h *Handler) cmdObligationPlan(ctx context.Context, req *request) (string, bool) {
	p, ok := matchObligationPlan(req.text)
	if !ok {
		return "", false
	}
	return h.addObligation(ctx, req.userID, p), true
}

func (h *Handler) cmdObligationFlat(ctx context.Context, req *request) (string, bool) {
	p, ok := matchObligationFlat(req.text)
	if !ok {
		return "", false
	}
	return h.addObligation(ctx, req.userID, p), true
}

func (h *Handler) addObligation(ctx context.Context, userID string, p obligationParams) string {
	o := core.Obligation{
		UserID:      userID,
		Kind:        p.Kind,
		Name:        p.Name,
		Monthly:     p.Monthly,
		Total:       p.Total,
		TotalMonths: p.TotalMonths,
	}
	if _, err := h.store.AddObligation(ctx, o); err != nil {
		return h.fail(ctx, "obligation", err)
	}
	return renderObligationAck(o)
}

func (h *Handler) cmdDelete(ctx context.Context, req *request) (string, bool) {
	p, ok := matchDelete(req.text)
	if !ok {
		return "", false
	}

	// Inside a family only the creator removes obligations.
	group, err := h.store.UserFamily(ctx, req.userID)
	if err != nil {
		return h.fail(ctx, "delete", err), true
	}
	if group != nil && group.CreatorID != req.userID {
		return replyDeleteDenied, true
	}

	matched, err := h.store.DeactivateObligation(ctx, req.userID, p.ID)
	if err != nil {
		return h.fail(ctx, "delete", err), true
	}
	if !matched {
		// Unknown id and foreign owner look identical on purpose.
		return replyDeleteNotFound, true
	}
	return renderDeleteAck(p.ID), true
}

func (h *Handler) cmdCreateFamily(ctx context.Context, req *request) (string, bool) {
	p, ok := matchCreateFamily(req.text)
	if !ok {
		return "", false
	}

	existing, err := h.store.UserFamily(ctx, req.userID)
	if err != nil {
		return h.fail(ctx, "create-family", err), true
	}
	if existing != nil {
		return renderAlreadyInFamily(existing.Name), true
	}

	group, err := h.store.CreateFamily(ctx, p.Name, req.userID)
	if err != nil {
		return h.fail(ctx, "create-family", err), true
	}
	return renderFamilyCreated(group), true
}

func (h *Handler) cmdJoinFamily(ctx context.Context, req *request) (string, bool) {
	p, ok := matchJoinFamily(req.text)
	if !ok {
		return "", false
	}

	group, err := h.store.FamilyByInviteCode(ctx, p.Code)
	if err != nil {
		return h.fail(ctx, "join-family", err), true
	}
	if group == nil {
		return replyInvalidInviteCode, true
	}

	existing, err := h.store.UserFamily(ctx, req.userID)
	if err != nil {
		return h.fail(ctx, "join-family", err), true
	}
	if existing != nil && existing.ID != group.ID {
		return renderAlreadyInFamily(existing.Name), true
	}

	// Re-joining the same group is a success; AddMember is a no-op then.
	if err := h.store.AddMember(ctx, group.ID, req.userID, core.RoleMember); err != nil {
		return h.fail(ctx, "join-family", err), true
	}
	h.logger.InfoContext(ctx, "User joined family",
		applog.FieldUserID, req.userID,
		applog.FieldGroupID, group.ID)

	members, err := h.store.MemberIDs(ctx, group.ID)
	if err != nil {
		return h.fail(ctx, "join-family", err), true
	}
	return renderFamilyJoined(group.Name, len(members)), true
}

func (h *Handler) leaveFamily(ctx context.Context, userID string) string {
	group, err := h.store.UserFamily(ctx, userID)
	if err != nil {
		return h.fail(ctx, "leave-family", err)
	}
	if group == nil {
		return replyNotInFamily
	}
	removed, err := h.store.RemoveMember(ctx, group.ID, userID)
	if err != nil {
		return h.fail(ctx, "leave-family", err)
	}
	if !removed {
		return replyNotInFamily
	}
	h.logger.InfoContext(ctx, "User left family",
		applog.FieldUserID, userID,
		applog.FieldGroupID, group.ID)
	return replyLeftFamily
}

func (h *Handler) cmdNickname(ctx context.Context, req *request) (string, bool) {
	p, ok := matchNickname(req.text)
	if !ok {
		return "", false
	}
	if err := h.store.UpdateNickname(ctx, req.userID, p.Name); err != nil {
		return h.fail(ctx, "nickname", err), true
	}
	return renderNicknameAck(p.Name), true
}

func (h *Handler) cmdHistory(ctx context.Context, req *request) (string, bool) {
	p, ok := matchHistory(req.text)
	if !ok {
		return "", false
	}
	records, err := h.store.RecentTransactions(ctx, req.userID, p.Days, time.Now())
	if err != nil {
		return h.fail(ctx, "history", err), true
	}
	return renderHistory(p.Days, records), true
}

func (h *Handler) cmdStats(ctx context.Context, req *request) (string, bool) {
	p, ok := matchStats(req.text)
	if !ok {
		return "", false
	}
	stats, err := h.calc.CategoryStats(ctx, req.userID, p.Days)
	if err != nil {
		return h.fail(ctx, "stats", err), true
	}
	return renderStats(stats), true
}

func (h *Handler) cmdBudget(ctx context.Context, req *request) (string, bool) {
	p, ok := matchBudget(req.text)
	if !ok {
		return "", false
	}

	if p.Amount.Cents > 0 {
		if err := h.store.SetBudget(ctx, req.userID, p.Amount); err != nil {
			return h.fail(ctx, "budget", err), true
		}
		return renderBudgetSet(p.Amount), true
	}

	status, err := h.calc.BudgetStatus(ctx, req.userID)
	if err != nil {
		return h.fail(ctx, "budget", err), true
	}
	return renderBudgetStatus(status), true
}

// Report views

func (h *Handler) todayReport(ctx context.Context, userID string) string {
	day, err := h.store.DaySummary(ctx, userID, time.Now())
	if err != nil {
		return h.fail(ctx, "today", err)
	}
	debt, err := h.calc.DailyDebt(ctx, userID)
	if err != nil {
		return h.fail(ctx, "today", err)
	}
	return renderTodayReport(day, debt)
}

func (h *Handler) monthReport(ctx context.Context, userID string) string {
	month, err := h.store.MonthSummary(ctx, userID, time.Now())
	if err != nil {
		return h.fail(ctx, "month", err)
	}
	debt, err := h.calc.DailyDebt(ctx, userID)
	if err != nil {
		return h.fail(ctx, "month", err)
	}
	return renderMonthReport(month, debt)
}

func (h *Handler) obligationsReport(ctx context.Context, userID string) string {
	obligations, err := h.store.ActiveObligations(ctx, userID, time.Now())
	if err != nil {
		return h.fail(ctx, "recurring", err)
	}
	debt, err := h.calc.DailyDebt(ctx, userID)
	if err != nil {
		return h.fail(ctx, "recurring", err)
	}
	return renderObligationsReport(obligations, debt)
}

func (h *Handler) familyView(ctx context.Context, userID string) string {
	group, err := h.store.UserFamily(ctx, userID)
	if err != nil {
		return h.fail(ctx, "family", err)
	}
	if group == nil {
		return replyNoFamilyYet
	}
	members, err := h.store.MemberIDs(ctx, group.ID)
	if err != nil {
		return h.fail(ctx, "family", err)
	}
	return renderFamilyView(group, len(members))
}

func (h *Handler) membersView(ctx context.Context, userID string) string {
	group, err := h.store.UserFamily(ctx, userID)
	if err != nil {
		return h.fail(ctx, "members", err)
	}
	if group == nil {
		return replyNoFamilyYet
	}
	members, err := h.store.Members(ctx, group.ID)
	if err != nil {
		return h.fail(ctx, "members", err)
	}
	return renderMembersView(members)
}

func (h *Handler) familyDebtView(ctx context.Context, userID string) string {
	group, err := h.store.UserFamily(ctx, userID)
	if err != nil {
		return h.fail(ctx, "family-debt", err)
	}
	if group == nil {
		return replyNoFamilyYet
	}
	ranking, err := h.calc.FamilyDebtRanking(ctx, group.ID)
	if err != nil {
		return h.fail(ctx, "family-debt", err)
	}
	detail, err := h.calc.FamilyDailyDebt(ctx, group.ID)
	if err != nil {
		return h.fail(ctx, "family-debt", err)
	}
	return renderFamilyDebtView(ranking, detail)
}
