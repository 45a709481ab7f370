// Package analyzer implements the two analysis backends behind one
// interface: a classifier-backed analyzer that scores each clause with the
// local multi-label model, and a generative-backed analyzer that asks a
// language model for problematic spans over the whole document. The variant
// is chosen at construction time by the composition root, never by runtime
// type inspection.
package analyzer

import (
	"context"
	"errors"

	"github.com/biaslens/biaslens/internal/analysis"
)

// ErrEmptyText is returned when a document is empty after trimming. It is the
// only analyzer error a caller should map to a client-side failure; scoring
// problems inside a document degrade to empty findings instead.
var ErrEmptyText = errors.New("text cannot be empty")

// Config carries per-request analysis settings. Values are passed by value on
// every call so one request can never observe another's threshold.
type Config struct {
	// Threshold is the minimum sigmoid score for a classifier label to be
	// retained. Ignored by the generative variant.
	Threshold float64
}

// Analyzer produces a complete analysis of one document.
type Analyzer interface {
	// Analyze runs the full analysis. Identical input and config yield an
	// identical result; no state persists across calls beyond the loaded
	// model itself.
	Analyze(ctx context.Context, text string, cfg Config) (*analysis.Result, error)

	// Name returns the analyzer identifier ("classifier" or "generative").
	Name() string
}

// Scorer is the inference capability the classifier variant depends on. The
// sidecar client implements it; tests substitute stubs.
type Scorer interface {
	// Score returns unfiltered label scores for one text unit.
	Score(ctx context.Context, text string) ([]analysis.LabelScore, error)

	// Name returns the scorer identifier.
	Name() string
}
