package bot

import (
	"fmt"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/storage"
)

// Fixed replies. Everything user-facing is plain text; no error codes cross
// the chat boundary.
const (
	replyUnrecognized  = "❓ Unrecognized command. Send \"help\" for the guide."
	replyInternalError = "⚠️ Something went wrong. Please try again later."

	replyDeleteDenied      = "🚫 Only the family creator can delete obligations"
	replyDeleteNotFound    = "❌ No such entry"
	replyInvalidInviteCode = "❌ Invalid invite code"
	replyNotInFamily       = "❌ You are not in a family group"
	replyLeftFamily        = "👋 You left the family group"
	replyNoFamilyYet       = "👪 You are not in a family group yet\n\nSend \"create-family <name>\" to start one\nor \"join-family <code>\" to join an existing one"

	helpText = `📖 Ledger bot guide

💰 Daily bookkeeping
• expense 50 food lunch
• income 1000 salary

🏠 Loans and fixed costs
• loan mortgage 120000 12
• debt card 6000 6
• fixed parking 300
• delete 1  (removes entry with id 1)

👪 Family sharing
• create-family smiths
• join-family A1B2C3
• members / family-debt / leave-family

📊 Reports
• today / month / recurring
• history 7 / stats 30 / budget 5000

💡 A daily summary is pushed every morning`

	initGuide = `👋 Welcome!

Record your first entry:
• expense 50 food
• income 1000 salary

Add your recurring obligations:
• loan mortgage 120000 12
• fixed parking 300

Send "help" anytime for the full guide.`

	// Caps the per-day entry list in the today report.
	maxDayRecords = 5
)

func kindIcon(k core.ObligationKind) string {
	switch k {
	case core.Loan:
		return "🏦"
	case core.Debt:
		return "💳"
	default:
		return "📝"
	}
}

func txIcon(k core.TransactionKind) string {
	if k == core.Income {
		return "💵"
	}
	return "💸"
}

func renderTransactionAck(t core.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Recorded %s %s\nCategory: %s", t.Kind, t.Amount.Format(), t.Category)
	if t.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s", t.Note)
	}
	return b.String()
}

func renderObligationAck(o core.Obligation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Added %s: %s", o.Kind, o.Name)
	if o.TotalMonths > 0 {
		fmt.Fprintf(&b, "\nTotal: %s over %d months", o.Total.Format(), o.TotalMonths)
	}
	fmt.Fprintf(&b, "\nMonthly: %s", o.Monthly.Format())
	fmt.Fprintf(&b, "\nDaily: %s", core.DailyFromMonthly(o.Monthly).Format())
	return b.String()
}

func renderDeleteAck(id int64) string {
	return fmt.Sprintf("✅ Removed entry (id %d)", id)
}

func renderNicknameAck(name string) string {
	return fmt.Sprintf("✅ Nickname set to %s", name)
}

func renderTodayReport(day storage.DaySummary, debt metrics.DailyDebt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Today\n\n💵 Income: %s\n💸 Expense: %s\n📊 Balance: %s",
		day.Income.Format(), day.Expense.Format(), day.Balance().Format())

	if debt.DailyTotal.Cents > 0 {
		net := day.Balance().Add(debt.DailyTotal.Neg())
		fmt.Fprintf(&b, "\n\n🏠 Daily obligations: %s\n💰 Net balance: %s",
			debt.DailyTotal.Format(), net.Format())
	}

	if len(day.Records) > 0 {
		b.WriteString("\n\n📝 Today's entries:")
		for i, r := range day.Records {
			if i == maxDayRecords {
				break
			}
			fmt.Fprintf(&b, "\n%s %s %s", txIcon(r.Kind), r.Category, r.Amount.Format())
		}
	}
	return b.String()
}

func renderMonthReport(month storage.MonthSummary, debt metrics.DailyDebt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 This month\n\n💵 Income: %s\n💸 Expense: %s\n📊 Balance: %s\n📆 Active days: %d",
		month.Income.Format(), month.Expense.Format(), month.Balance().Format(), month.ActiveDays)

	if debt.MonthlyTotal.Cents > 0 {
		net := month.Balance().Add(debt.MonthlyTotal.Neg())
		fmt.Fprintf(&b, "\n\n🏠 Monthly obligations: %s\n💰 Net balance: %s",
			debt.MonthlyTotal.Format(), net.Format())
	}
	return b.String()
}

func renderObligationsReport(obligations []core.Obligation, debt metrics.DailyDebt) string {
	if len(obligations) == 0 {
		return "📋 No recurring obligations yet\n\nSend \"loan mortgage 120000 12\" to add a loan\nor \"fixed parking 300\" for a fixed cost"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏠 Recurring obligations\n\nDaily total: %s\nMonthly total: %s\n\n📋 Entries:",
		debt.DailyTotal.Format(), debt.MonthlyTotal.Format())
	for _, o := range obligations {
		daily := core.DailyFromMonthly(o.Monthly)
		fmt.Fprintf(&b, "\n%s [%d] %s: %s/month (%s/day)",
			kindIcon(o.Kind), o.ID, o.Name, o.Monthly.Format(), daily.Format())
	}
	b.WriteString("\n\n💡 Send \"delete <id>\" to remove an entry")
	return b.String()
}

func renderHistory(days int, records []core.Transaction) string {
	if len(records) == 0 {
		return fmt.Sprintf("📋 No entries in the last %d days", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Last %d days", days)
	lastDay := ""
	for _, r := range records {
		day := r.CreatedAt.Format("2006-01-02")
		if day != lastDay {
			fmt.Fprintf(&b, "\n\n📅 %s", day)
			lastDay = day
		}
		fmt.Fprintf(&b, "\n%s %s %s", txIcon(r.Kind), r.Category, r.Amount.Format())
		if r.Note != "" {
			fmt.Fprintf(&b, " (%s)", r.Note)
		}
	}
	return b.String()
}

func renderStats(stats metrics.CategoryStats) string {
	if len(stats.Items) == 0 {
		return fmt.Sprintf("📊 No expenses in the last %d days", stats.Days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Expenses by category, last %d days\n\nTotal: %s",
		stats.Days, stats.Total.Format())
	for _, item := range stats.Items {
		fmt.Fprintf(&b, "\n• %s: %s (%.1f%%, %d entries)",
			item.Category, item.Total.Format(), item.Percent, item.Count)
	}
	return b.String()
}

func renderBudgetSet(amount core.Money) string {
	return fmt.Sprintf("✅ Monthly budget set to %s", amount.Format())
}

func renderBudgetStatus(status *metrics.BudgetStatus) string {
	if status == nil {
		return "💳 No budget set\n\nSend \"budget 5000\" to set a monthly budget"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "💳 Monthly budget\n\nBudget: %s\nSpent: %s (%.1f%%)\nRemaining: %s",
		status.Budget.Format(), status.Spent.Format(), status.Percent, status.Remaining.Format())
	if status.Remaining.Cents < 0 {
		b.WriteString("\n\n⚠️ Budget exceeded")
	}
	return b.String()
}

func renderFamilyCreated(group *core.FamilyGroup) string {
	return fmt.Sprintf("✅ Family group %q created\n\nInvite code: %s\nShare it so others can send \"join-family %s\"",
		group.Name, group.InviteCode, group.InviteCode)
}

func renderFamilyJoined(name string, memberCount int) string {
	return fmt.Sprintf("✅ Joined family group %q\nMembers: %d", name, memberCount)
}

func renderAlreadyInFamily(name string) string {
	return fmt.Sprintf("❌ You already belong to the family group %q\nSend \"leave-family\" first", name)
}

func renderFamilyView(group *core.FamilyGroup, memberCount int) string {
	return fmt.Sprintf("👪 Family group %q\n\nInvite code: %s\nMembers: %d\n\nSend \"members\" for the member list\nor \"family-debt\" for the debt ranking",
		group.Name, group.InviteCode, memberCount)
}

func renderMembersView(members []core.FamilyMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👪 Members (%d)", len(members))
	for _, m := range members {
		fmt.Fprintf(&b, "\n• %s (%s, joined %s)",
			m.DisplayName(), m.Role.Label(), m.JoinedAt.Format("2006-01-02"))
	}
	return b.String()
}

func renderFamilyDebtView(ranking metrics.FamilyRanking, detail metrics.DailyDebt) string {
	if ranking.DailyTotal.Cents == 0 {
		return "📊 No obligations recorded in this family yet"
	}

	var b strings.Builder
	b.WriteString("📊 Family debt ranking\n")
	for i, m := range ranking.Members {
		fmt.Fprintf(&b, "\n%s %s: %s/day (%s/month)",
			rankMark(i), m.Label, m.Daily.Format(), m.Monthly.Format())
	}
	if len(detail.Lines) > 0 {
		b.WriteString("\n\n📋 Entries:")
		for _, line := range detail.Lines {
			fmt.Fprintf(&b, "\n%s %s (%s): %s/day",
				kindIcon(line.Kind), line.Name, line.OwnerLabel, line.Daily.Format())
		}
	}
	fmt.Fprintf(&b, "\n\nFamily daily total: %s\nFamily monthly total: %s",
		ranking.DailyTotal.Format(), ranking.MonthlyTotal.Format())
	return b.String()
}

// rankMark returns the medal for the top three positions and a plain ordinal
// for everyone else.
func rankMark(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	}
	return fmt.Sprintf("%d.", i+1)
}
