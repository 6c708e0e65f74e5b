package consensus

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cryptoscout/internal/domain/analysis"
)

func ptr(f float64) *float64 { return &f }

func scored(f float64, src analysis.ExtractionSource) analysis.NormalizedAnalysis {
	return analysis.NormalizedAnalysis{
		Score:   ptr(f),
		Verdict: analysis.VerdictFromScore(f),
		Source:  src,
	}
}

func TestAggregateBlendsMedianAndMean(t *testing.T) {
	// lower median 5, mean 6.333..; 5*0.6 + 6.333*0.4 rounds to 5.5
	in := []analysis.NormalizedAnalysis{
		scored(9, analysis.SourceJSON),
		scored(5, analysis.SourceJSON),
		scored(5, analysis.SourceKeyValue),
	}
	got, ok := aggregate(in)
	if !ok {
		t.Fatal("aggregate returned ok=false")
	}
	if got.FinalScore != 5.5 {
		t.Errorf("FinalScore = %v, want 5.5", got.FinalScore)
	}
	if got.FinalVerdict != analysis.VerdictHold {
		t.Errorf("FinalVerdict = %q, want HOLD", got.FinalVerdict)
	}
	if got.Confidence != analysis.ConfidenceMedium {
		t.Errorf("Confidence = %q, want MEDIUM", got.Confidence)
	}
	if got.ModelsUsed != 3 {
		t.Errorf("ModelsUsed = %d, want 3", got.ModelsUsed)
	}
	if diff := cmp.Diff([]float64{9, 5, 5}, got.ContributingScores); diff != "" {
		t.Errorf("ContributingScores (-want +got):\n%s", diff)
	}
}

func TestAggregateSingleBackend(t *testing.T) {
	got, ok := aggregate([]analysis.NormalizedAnalysis{scored(8, analysis.SourceJSON)})
	if !ok {
		t.Fatal("aggregate returned ok=false")
	}
	if got.FinalScore != 8.0 {
		t.Errorf("FinalScore = %v, want 8.0", got.FinalScore)
	}
	if got.FinalVerdict != analysis.VerdictBuy {
		t.Errorf("FinalVerdict = %q, want BUY", got.FinalVerdict)
	}
}

func TestAggregateEvenCountUsesLowerMedian(t *testing.T) {
	// sorted [6 8]: lower-middle is 6; 6*0.6 + 7*0.4 = 6.4
	got, ok := aggregate([]analysis.NormalizedAnalysis{
		scored(8, analysis.SourceJSON),
		scored(6, analysis.SourceJSON),
	})
	if !ok {
		t.Fatal("aggregate returned ok=false")
	}
	if got.FinalScore != 6.4 {
		t.Errorf("FinalScore = %v, want 6.4", got.FinalScore)
	}
}

func TestAggregateDropsScorelessRecords(t *testing.T) {
	in := []analysis.NormalizedAnalysis{
		{Source: analysis.SourceNone},
		scored(9, analysis.SourceJSON),
		scored(5, analysis.SourceBraceScan),
		{Source: analysis.SourceJSON}, // parsed but no usable score
		scored(5, analysis.SourceBareNumber),
	}
	got, ok := aggregate(in)
	if !ok {
		t.Fatal("aggregate returned ok=false")
	}
	if got.ModelsUsed != 3 {
		t.Errorf("ModelsUsed = %d, want 3", got.ModelsUsed)
	}
	// Contributing scores keep launch order, with the scoreless slots gone.
	if diff := cmp.Diff([]float64{9, 5, 5}, got.ContributingScores); diff != "" {
		t.Errorf("ContributingScores (-want +got):\n%s", diff)
	}
	wantSources := []analysis.ExtractionSource{
		analysis.SourceJSON, analysis.SourceBraceScan, analysis.SourceBareNumber,
	}
	if diff := cmp.Diff(wantSources, got.Sources); diff != "" {
		t.Errorf("Sources (-want +got):\n%s", diff)
	}
}

func TestAggregateNoUsableInput(t *testing.T) {
	if _, ok := aggregate(nil); ok {
		t.Error("aggregate(nil) ok = true, want false")
	}
	if _, ok := aggregate([]analysis.NormalizedAnalysis{{Source: analysis.SourceNone}}); ok {
		t.Error("aggregate(scoreless) ok = true, want false")
	}
}

func TestAggregateCarriesFirstDescriptiveFields(t *testing.T) {
	first := scored(7, analysis.SourceJSON)
	second := scored(6, analysis.SourceJSON)
	second.Summary = "from second"
	second.KeyRisks = []string{"risk b"}
	third := scored(8, analysis.SourceJSON)
	third.Summary = "from third"
	third.TeamAssessment = "experienced"

	got, _ := aggregate([]analysis.NormalizedAnalysis{first, second, third})
	if got.Summary != "from second" {
		t.Errorf("Summary = %q, want %q", got.Summary, "from second")
	}
	if got.TeamAssessment != "experienced" {
		t.Errorf("TeamAssessment = %q, want %q", got.TeamAssessment, "experienced")
	}
	if diff := cmp.Diff([]string{"risk b"}, got.KeyRisks); diff != "" {
		t.Errorf("KeyRisks (-want +got):\n%s", diff)
	}
}

func TestLowerMedianDoesNotMutateInput(t *testing.T) {
	in := []float64{9, 5, 7}
	_ = lowerMedian(in)
	if diff := cmp.Diff([]float64{9, 5, 7}, in); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}
