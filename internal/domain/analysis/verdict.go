package analysis

import "strings"

// Verdict is the five-valued investment recommendation.
type Verdict string

const (
	VerdictStrongBuy Verdict = "STRONG_BUY"
	VerdictBuy       Verdict = "BUY"
	VerdictHold      Verdict = "HOLD"
	VerdictAvoid     Verdict = "AVOID"
	VerdictScam      Verdict = "SCAM"
)

// Confidence enum
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ParseVerdict canonicalizes free-form verdict text. Spacing and hyphens are
// treated as underscores so "strong buy" and "STRONG-BUY" both resolve.
// The second return reports whether the text matched a canonical token.
func ParseVerdict(s string) (Verdict, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch Verdict(v) {
	case VerdictStrongBuy, VerdictBuy, VerdictHold, VerdictAvoid, VerdictScam:
		return Verdict(v), true
	}
	return "", false
}

// VerdictFromScore maps a score to a verdict using the fixed thresholds.
func VerdictFromScore(score float64) Verdict {
	switch {
	case score >= 8.5:
		return VerdictStrongBuy
	case score >= 7.0:
		return VerdictBuy
	case score >= 5.5:
		return VerdictHold
	case score >= 4.0:
		return VerdictAvoid
	default:
		return VerdictScam
	}
}

// ScoreFromVerdict is the inverse used when a response carries only a bare
// verdict token and no number.
func ScoreFromVerdict(v Verdict) float64 {
	switch v {
	case VerdictStrongBuy:
		return 9
	case VerdictBuy:
		return 7
	case VerdictHold:
		return 5
	case VerdictAvoid:
		return 3
	default:
		return 1
	}
}

// ConfidenceFromScore maps a final score to a confidence band.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 7.0:
		return ConfidenceHigh
	case score >= 4.0:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseConfidence canonicalizes a confidence string, empty when unrecognized.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToUpper(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	case ConfidenceLow:
		return ConfidenceLow
	}
	return ""
}
