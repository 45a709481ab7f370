// Package analysis contains the core text-analysis primitives: clause
// segmentation, span localization, and result aggregation. Everything in this
// package is pure and deterministic; model calls live in internal/analyzer.
package analysis

// TextUnit is one independently analyzable fragment of a document. Units keep
// insertion order from segmentation; offsets into the parent document are
// recovered with Locate when a consumer needs them.
type TextUnit struct {
	Text string `json:"text"`
}

// LabelScore is one classifier label with its sigmoid score.
type LabelScore struct {
	Label      string  `json:"bias_type"`
	Confidence float64 `json:"confidence"`
	LabelID    int     `json:"label_id"`
}

// Finding is one detected problematic span.
//
// Text is the phrase as reported by the analyzer, which is kept as the display
// label even when the located document substring differs in case or
// whitespace. Start/End are half-open byte offsets into the original document
// and always satisfy 0 <= Start <= End <= len(document); findings that cannot
// be located are dropped rather than emitted with sentinel offsets.
type Finding struct {
	Text              string  `json:"text"`
	Category          string  `json:"category"`
	Explanation       string  `json:"explanation,omitempty"`
	SuggestedRevision string  `json:"suggested_revision,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	Start             int     `json:"start_index"`
	End               int     `json:"end_index"`
}

// UnitResult is the per-unit outcome in classifier mode. Only units with at
// least one retained label appear in a result's FlaggedUnits.
type UnitResult struct {
	Clause        string       `json:"clause"`
	Biases        []LabelScore `json:"detected_biases"`
	Justification string       `json:"justification"`
}

// Summary aggregates a document's findings into counts and a risk tier.
type Summary struct {
	TotalUnitsAnalyzed int      `json:"total_units_analyzed"`
	FlaggedCount       int      `json:"flagged_count"`
	FlaggedPercentage  float64  `json:"flagged_percentage"`
	CategoriesDetected []string `json:"categories_detected"`
	OverallAssessment  string   `json:"overall_assessment"`
	RiskLevel          string   `json:"risk_level"`
	BiasDensity        float64  `json:"bias_density"`
}

// Result is a complete analysis of one document. It is constructed once per
// request and read-only afterwards.
type Result struct {
	OriginalText string `json:"original_text"`
	TotalUnits   int    `json:"total_units"`

	// FlaggedUnits is populated in classifier mode only.
	FlaggedUnits []UnitResult `json:"biased_clauses,omitempty"`

	// Findings is the unified located-span view. Classifier mode derives one
	// finding per retained (unit, label) pair; generative mode produces them
	// directly.
	Findings []Finding `json:"findings"`

	Summary Summary `json:"summary"`
}

// Risk tiers for Summary.RiskLevel.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)
