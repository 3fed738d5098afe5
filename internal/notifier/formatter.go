package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"AutoCompound/internal/calculator"
	"AutoCompound/internal/model"
)

// FormatCycleReport formats one cycle's results into a Telegram message.
func FormatCycleReport(report *model.CycleReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔁 <b>Reinvest cycle</b> | %s\n\n", report.StartedAt.Format("2006-01-02 15:04")))

	for _, r := range report.Results {
		switch {
		case !r.OK():
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", html.EscapeString(r.Label), html.EscapeString(r.Err.Error())))
		case r.Skipped:
			b.WriteString(fmt.Sprintf("⏭ %s: nothing to do\n", html.EscapeString(r.Label)))
		case r.Kind == model.KindBalance:
			b.WriteString(fmt.Sprintf("💰 %s: %s\n", html.EscapeString(r.Label), calculator.FormatEther(r.Amount)))
		default:
			b.WriteString(fmt.Sprintf("✅ %s\n   <code>%s</code> (%s Gwei)\n",
				html.EscapeString(r.Label), r.TxHash.Hex(), calculator.FormatGwei(r.GasPrice)))
		}
	}

	b.WriteString(fmt.Sprintf("\nSent %d | Skipped %d | Failed %d | %s\n",
		report.Sent(), report.Skipped(), report.Failed(), report.Duration().Round(time.Second)))
	return b.String()
}

// Status is the static summary shown by the /status command.
type Status struct {
	Account  string
	Interval time.Duration
	Policy   string
	NextRun  time.Time
}

// FormatStatus formats the bot status for display.
func FormatStatus(s Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>AutoCompound status</b>\n\n")
	b.WriteString(fmt.Sprintf("Account: <code>%s</code>\n", s.Account))
	b.WriteString(fmt.Sprintf("Interval: %s\n", s.Interval))
	b.WriteString(fmt.Sprintf("Overlap policy: %s\n", s.Policy))
	if !s.NextRun.IsZero() {
		b.WriteString(fmt.Sprintf("Next run: %s\n", s.NextRun.Format("2006-01-02 15:04")))
	}
	return b.String()
}
