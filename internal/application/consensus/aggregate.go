package consensus

import (
	"math"
	"sort"

	"cryptoscout/internal/domain/analysis"
)

// aggregate reconciles the per-backend analyses into one result. Inputs are
// expected in launch order; ContributingScores preserves that order so audit
// output is reproducible across runs with the same backend set. Returns
// ok=false when no input carries a usable score.
func aggregate(results []analysis.NormalizedAnalysis) (analysis.ConsensusResult, bool) {
	usable := make([]analysis.NormalizedAnalysis, 0, len(results))
	for _, r := range results {
		if r.HasScore() {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return analysis.ConsensusResult{}, false
	}

	scores := make([]float64, len(usable))
	sources := make([]analysis.ExtractionSource, len(usable))
	for i, r := range usable {
		scores[i] = *r.Score
		sources[i] = r.Source
	}

	// Median damps one wildly divergent backend, mean keeps overall
	// sentiment in the blend.
	final := round1(lowerMedian(scores)*0.6 + mean(scores)*0.4)

	out := analysis.ConsensusResult{
		FinalScore:         final,
		FinalVerdict:       analysis.VerdictFromScore(final),
		Confidence:         analysis.ConfidenceFromScore(final),
		ModelsUsed:         len(usable),
		ContributingScores: scores,
		Sources:            sources,
	}

	// Carry descriptive fields from the first backend that produced them.
	for _, r := range usable {
		if out.Summary == "" {
			out.Summary = r.Summary
		}
		if out.GrowthPotential == "" {
			out.GrowthPotential = r.GrowthPotential
		}
		if out.TeamAssessment == "" {
			out.TeamAssessment = r.TeamAssessment
		}
		if out.ProductStatus == "" {
			out.ProductStatus = r.ProductStatus
		}
		if out.PositionSize == "" {
			out.PositionSize = r.PositionSize
		}
		if len(out.KeyStrengths) == 0 {
			out.KeyStrengths = r.KeyStrengths
		}
		if len(out.KeyRisks) == 0 {
			out.KeyRisks = r.KeyRisks
		}
	}
	return out, true
}

// lowerMedian returns the lower-middle element for even counts, so the
// median is always one of the reported scores.
func lowerMedian(scores []float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}

func mean(scores []float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
