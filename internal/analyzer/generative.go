package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/biaslens/biaslens/internal/analysis"
	"github.com/biaslens/biaslens/internal/providers"
)

const (
	generativeTemperature = 0.3
	generativeMaxTokens   = 2000
)

// Generative analyzes a whole document with a single language-model call and
// maps the reported spans back onto the original text.
type Generative struct {
	client providers.LLMClient
	model  string
	logger *slog.Logger
}

// GenerativeOption configures a Generative analyzer.
type GenerativeOption func(*Generative)

// WithModel overrides the client's default model.
func WithModel(model string) GenerativeOption {
	return func(g *Generative) { g.model = model }
}

// WithGenerativeLogger sets the logger. Defaults to slog.Default.
func WithGenerativeLogger(l *slog.Logger) GenerativeOption {
	return func(g *Generative) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerative builds a generative analyzer over the given client.
func NewGenerative(client providers.LLMClient, opts ...GenerativeOption) *Generative {
	g := &Generative{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name implements Analyzer.
func (g *Generative) Name() string { return "generative" }

// biasInstance mirrors the JSON object the model is instructed to emit.
type biasInstance struct {
	TextSpan          string `json:"text_span"`
	Category          string `json:"category"`
	Explanation       string `json:"explanation"`
	SuggestedRevision string `json:"suggested_revision"`
}

type biasInstancesReply struct {
	BiasInstances []biasInstance `json:"bias_instances"`
}

// Analyze implements Analyzer. A malformed or off-schema model reply degrades
// to an empty finding set with a warning; only transport-level failure of the
// single model call is surfaced as an error.
func (g *Generative) Analyze(ctx context.Context, text string, cfg Config) (*analysis.Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyText
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: analysisPrompt(trimmed)},
		},
		Model:       g.model,
		Temperature: generativeTemperature,
		MaxTokens:   generativeMaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: json.RawMessage(biasInstancesSchema),
		},
	}

	res, err := g.client.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bias analysis failed: %w", err)
	}

	units := analysis.Segment(trimmed)
	result := &analysis.Result{
		OriginalText: trimmed,
		TotalUnits:   len(units),
		FlaggedUnits: []analysis.UnitResult{},
		Findings:     g.extractFindings(trimmed, res),
	}

	var categories []string
	for _, f := range result.Findings {
		categories = append(categories, f.Category)
	}
	result.Summary = analysis.Aggregate(trimmed, len(units), len(result.Findings), categories, len(result.Findings))
	return result, nil
}

// extractFindings parses, validates, and localizes the model's reply. Every
// failure mode here is recoverable and yields fewer findings, never an error.
func (g *Generative) extractFindings(document string, res *providers.ChatResult) []analysis.Finding {
	parsed := res.ParsedJSON
	if parsed == nil {
		var err error
		parsed, err = providers.ParseStructuredJSON(res.Content)
		if err != nil {
			g.logger.Warn("model reply is not valid JSON",
				"provider", g.client.Name(),
				"error", err)
			return []analysis.Finding{}
		}
	}

	if err := providers.ValidateStructuredJSON(json.RawMessage(biasInstancesSchema), parsed); err != nil {
		g.logger.Warn("model reply failed schema validation",
			"provider", g.client.Name(),
			"error", err)
		return []analysis.Finding{}
	}

	var reply biasInstancesReply
	if err := json.Unmarshal(parsed, &reply); err != nil {
		g.logger.Warn("model reply could not be decoded",
			"provider", g.client.Name(),
			"error", err)
		return []analysis.Finding{}
	}

	findings := make([]analysis.Finding, 0, len(reply.BiasInstances))
	for _, inst := range reply.BiasInstances {
		span := strings.TrimSpace(inst.TextSpan)
		if span == "" {
			continue
		}

		loc, ok := analysis.Locate(document, span)
		if !ok {
			g.logger.Warn("could not locate reported span", "span", span)
			continue
		}

		findings = append(findings, analysis.Finding{
			// The span text is kept exactly as the model reported it even
			// when localization matched a close variant.
			Text:              inst.TextSpan,
			Category:          analysis.NormalizeCategory(inst.Category),
			Explanation:       inst.Explanation,
			SuggestedRevision: inst.SuggestedRevision,
			Start:             loc.Start,
			End:               loc.End,
		})
	}
	return findings
}
