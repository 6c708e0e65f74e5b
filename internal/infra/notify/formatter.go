package notify

import (
	"fmt"
	"strings"

	"cryptoscout/internal/domain/analysis"
	"cryptoscout/internal/domain/projects"
)

func verdictEmoji(v analysis.Verdict) string {
	switch v {
	case analysis.VerdictStrongBuy:
		return "🚀"
	case analysis.VerdictBuy:
		return "✅"
	case analysis.VerdictHold:
		return "⏸"
	case analysis.VerdictAvoid:
		return "⚠️"
	case analysis.VerdictScam:
		return "🚨"
	default:
		return "❓"
	}
}

// FormatAlert renders one analysis as a Telegram HTML message.
func FormatAlert(p projects.Project, res analysis.ConsensusResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>%s</b> — %s\n", verdictEmoji(res.FinalVerdict), p.Name, res.FinalVerdict)
	fmt.Fprintf(&b, "Score: <b>%.1f/10</b> | Confidence: %s\n", res.FinalScore, res.Confidence)
	fmt.Fprintf(&b, "Category: %s | TVL: $%.0f\n", p.Category, p.TVL)

	if res.ModelsUsed > 0 {
		scores := make([]string, len(res.ContributingScores))
		for i, s := range res.ContributingScores {
			scores[i] = fmt.Sprintf("%.1f", s)
		}
		fmt.Fprintf(&b, "Consensus of %d models: [%s]\n", res.ModelsUsed, strings.Join(scores, ", "))
	} else {
		b.WriteString("⚠️ No model responses — TVL heuristic only\n")
	}

	if res.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", res.Summary)
	}
	fmt.Fprintf(&b, "\nGrowth: %s | Position: %s\n", res.GrowthPotential, res.PositionSize)
	fmt.Fprintf(&b, "Team: %s | Product: %s\n", res.TeamAssessment, res.ProductStatus)

	if len(res.KeyRisks) > 0 {
		b.WriteString("\nRisks:\n")
		for _, r := range res.KeyRisks {
			fmt.Fprintf(&b, "• %s\n", r)
		}
	}
	if p.URL != "" {
		fmt.Fprintf(&b, "\n%s", p.URL)
	}
	return b.String()
}
