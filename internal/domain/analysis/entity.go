package analysis

import "time"

// CallStatus describes how a single backend invocation ended.
type CallStatus string

const (
	StatusOK             CallStatus = "ok"
	StatusTimeout        CallStatus = "timeout"
	StatusTransportError CallStatus = "transport_error"
	StatusBackendError   CallStatus = "backend_error"
)

// RawModelOutput is the unprocessed result of one backend call. It lives
// only for the duration of a consensus run.
type RawModelOutput struct {
	BackendID string        `json:"backend_id"`
	Text      string        `json:"text"`
	Elapsed   time.Duration `json:"elapsed"`
	Status    CallStatus    `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// ExtractionSource records which extraction strategy produced a
// NormalizedAnalysis.
type ExtractionSource string

const (
	SourceJSON        ExtractionSource = "exact_json"
	SourceBraceScan   ExtractionSource = "brace_scan"
	SourceKeyValue    ExtractionSource = "key_value"
	SourceBareNumber  ExtractionSource = "bare_number"
	SourceBareVerdict ExtractionSource = "bare_verdict"
	SourceNone        ExtractionSource = "none"
)

// NormalizedAnalysis is the canonical decision extracted from one backend's
// raw text. Score is nil when no usable score could be recovered; such
// records are dropped by the aggregator. Created once, never mutated.
type NormalizedAnalysis struct {
	Score      *float64         `json:"score,omitempty"`
	Verdict    Verdict          `json:"verdict,omitempty"`
	Confidence Confidence       `json:"confidence,omitempty"`
	Summary    string           `json:"summary,omitempty"`
	Source     ExtractionSource `json:"extraction_source"`

	GrowthPotential string   `json:"growth_potential,omitempty"`
	KeyStrengths    []string `json:"key_strengths,omitempty"`
	KeyRisks        []string `json:"key_risks,omitempty"`
	TeamAssessment  string   `json:"team_assessment,omitempty"`
	ProductStatus   string   `json:"product_status,omitempty"`
	PositionSize    string   `json:"position_size,omitempty"`
}

// HasScore reports whether the record carries a usable score.
func (a NormalizedAnalysis) HasScore() bool { return a.Score != nil }

// ConsensusResult is the terminal output of one project analysis. It is
// always producible: with zero usable backends the fields come from the
// deterministic TVL fallback and ModelsUsed is 0.
type ConsensusResult struct {
	ProjectID    string  `json:"project_id"`
	ProjectName  string  `json:"project_name"`
	FinalScore   float64 `json:"final_score"`
	FinalVerdict Verdict `json:"final_verdict"`

	Confidence         Confidence         `json:"confidence"`
	ModelsUsed         int                `json:"models_used"`
	ContributingScores []float64          `json:"contributing_scores"`
	Sources            []ExtractionSource `json:"extraction_sources,omitempty"`

	Summary         string   `json:"summary,omitempty"`
	GrowthPotential string   `json:"growth_potential"`
	KeyStrengths    []string `json:"key_strengths"`
	KeyRisks        []string `json:"key_risks"`
	TeamAssessment  string   `json:"team_assessment"`
	ProductStatus   string   `json:"product_status"`
	PositionSize    string   `json:"position_size"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// RecordID identifier type for stored analysis records.
type RecordID string

// Record is a persisted consensus run, stored alongside the serialized
// result for auditing and retrieval.
type Record struct {
	ID         RecordID  `json:"id"`
	ProjectID  string    `json:"project_id"`
	ResultJSON string    `json:"result"`
	CreatedAt  time.Time `json:"created_at"`
}
