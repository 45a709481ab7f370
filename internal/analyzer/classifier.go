package analyzer

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/biaslens/biaslens/internal/analysis"
)

const (
	defaultWorkers     = 4
	defaultUnitTimeout = 30 * time.Second
)

// Classifier analyzes a document by segmenting it into clause-level units and
// scoring each unit independently against the local multi-label model.
type Classifier struct {
	scorer      Scorer
	workers     int
	unitTimeout time.Duration
	logger      *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithWorkers sets the maximum number of units scored concurrently.
func WithWorkers(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithUnitTimeout bounds a single unit's scoring call.
func WithUnitTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) {
		if d > 0 {
			c.unitTimeout = d
		}
	}
}

// WithClassifierLogger sets the logger. Defaults to slog.Default.
func WithClassifierLogger(l *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier builds a classifier-backed analyzer over the given scorer.
func NewClassifier(scorer Scorer, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		scorer:      scorer,
		workers:     defaultWorkers,
		unitTimeout: defaultUnitTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Analyzer.
func (c *Classifier) Name() string { return "classifier" }

// unitOutcome holds the scoring result for one unit. Err is recorded per
// slot so a single failed unit never aborts its siblings.
type unitOutcome struct {
	scores []analysis.LabelScore
	err    error
}

// Analyze implements Analyzer. Units are scored concurrently but results are
// assembled in segmentation order.
func (c *Classifier) Analyze(ctx context.Context, text string, cfg Config) (*analysis.Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}

	units := analysis.Segment(trimmed)
	outcomes := make([]unitOutcome, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, unit := range units {
		g.Go(func() error {
			uctx, cancel := context.WithTimeout(gctx, c.unitTimeout)
			defer cancel()
			scores, err := c.scorer.Score(uctx, unit.Text)
			outcomes[i] = unitOutcome{scores: scores, err: err}
			return nil
		})
	}
	_ = g.Wait() // workers record errors per slot and never return them

	result := &analysis.Result{
		OriginalText: trimmed,
		TotalUnits:   len(units),
		FlaggedUnits: []analysis.UnitResult{},
		Findings:     []analysis.Finding{},
	}

	var categories []string
	for i, unit := range units {
		out := outcomes[i]
		if out.err != nil {
			c.logger.Warn("unit scoring failed",
				"unit", i,
				"scorer", c.scorer.Name(),
				"error", out.err)
			continue
		}

		retained := retainAboveThreshold(out.scores, cfg.Threshold)
		if len(retained) == 0 {
			continue
		}

		result.FlaggedUnits = append(result.FlaggedUnits, analysis.UnitResult{
			Clause:        unit.Text,
			Biases:        retained,
			Justification: buildJustification(unit.Text, retained),
		})

		span, ok := analysis.Locate(trimmed, unit.Text)
		for _, label := range retained {
			categories = append(categories, label.Label)
			if !ok {
				continue
			}
			result.Findings = append(result.Findings, analysis.Finding{
				Text:       unit.Text,
				Category:   label.Label,
				Confidence: label.Confidence,
				Start:      span.Start,
				End:        span.End,
			})
		}
	}

	result.Summary = analysis.Aggregate(trimmed, len(units), len(result.FlaggedUnits), categories, len(result.Findings))
	return result, nil
}

// retainAboveThreshold filters scores at or above the threshold and orders
// them by descending confidence. The incoming slice is not modified.
func retainAboveThreshold(scores []analysis.LabelScore, threshold float64) []analysis.LabelScore {
	var retained []analysis.LabelScore
	for _, s := range scores {
		if s.Confidence >= threshold {
			retained = append(retained, s)
		}
	}
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Confidence > retained[j].Confidence
	})
	return retained
}
