package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/biaslens/biaslens/internal/analysis"
	"github.com/biaslens/biaslens/internal/providers"
)

func TestGenerativeAnalyze(t *testing.T) {
	doc := "The old man can't use a phone anyway. I love sunny days."
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"bias_instances": [
			{
				"text_span": "The old man can't use a phone anyway",
				"category": "Age",
				"explanation": "Assumes technological incompetence based on age.",
				"suggested_revision": "He prefers not to use a phone."
			}
		]
	}`)

	result, err := NewGenerative(mock).Analyze(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.TotalUnits != 2 {
		t.Errorf("TotalUnits = %d, want 2", result.TotalUnits)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Findings = %d, want 1", len(result.Findings))
	}
	f := result.Findings[0]
	if f.Category != "Age" {
		t.Errorf("Category = %q, want Age", f.Category)
	}
	if f.Start != 0 || f.End != len("The old man can't use a phone anyway") {
		t.Errorf("span = [%d,%d)", f.Start, f.End)
	}
	if f.Explanation == "" || f.SuggestedRevision == "" {
		t.Errorf("explanation/revision not carried through: %+v", f)
	}
	if result.Summary.RiskLevel != analysis.RiskMedium {
		t.Errorf("RiskLevel = %q, want Medium", result.Summary.RiskLevel)
	}
	if len(result.FlaggedUnits) != 0 {
		t.Errorf("FlaggedUnits = %d, want 0 in generative mode", len(result.FlaggedUnits))
	}
}

func TestGenerativeAnalyzeDeterministic(t *testing.T) {
	doc := "The old man can't use a phone anyway. I love sunny days."
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"bias_instances": [
			{"text_span": "The old man", "category": "Age", "explanation": "ageist framing"}
		]
	}`)
	g := NewGenerative(mock)

	first, err := g.Analyze(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := g.Analyze(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("repeated analysis differs:\n%s\n%s", a, b)
	}
}

func TestGenerativeRecoversFencedJSON(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "```json\n{\"bias_instances\": [{\"text_span\": \"poor people\", \"category\": \"Socioeconomic Status\", \"explanation\": \"x\", \"suggested_revision\": \"y\"}]}\n```"

	result, err := NewGenerative(mock).Analyze(context.Background(), "Everyone knows poor people are lazy.", Config{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Findings = %d, want 1", len(result.Findings))
	}
	if result.Findings[0].Category != "Socioeconomic Status" {
		t.Errorf("Category = %q", result.Findings[0].Category)
	}
}

func TestGenerativeMalformedReplyYieldsEmptyResult(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "I believe this text contains some bias but I cannot say where."

	result, err := NewGenerative(mock).Analyze(context.Background(), "A perfectly ordinary sentence about gardens.", Config{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Findings) != 0 {
		t.Errorf("Findings = %d, want 0", len(result.Findings))
	}
	if result.Summary.RiskLevel != analysis.RiskLow {
		t.Errorf("RiskLevel = %q, want Low", result.Summary.RiskLevel)
	}
	if result.Summary.OverallAssessment != "No bias detected" {
		t.Errorf("OverallAssessment = %q", result.Summary.OverallAssessment)
	}
}

func TestGenerativeDropsUnlocatableSpans(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"bias_instances": [
			{"text_span": "quarterly revenue projections dashboard", "category": "Age", "explanation": "x", "suggested_revision": "y"},
			{"text_span": "old man", "category": "Age", "explanation": "x", "suggested_revision": "y"}
		]
	}`)

	doc := "The old man can't use a phone anyway."
	result, err := NewGenerative(mock).Analyze(context.Background(), doc, Config{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Findings = %d, want 1 (unlocatable span dropped)", len(result.Findings))
	}
	if result.Findings[0].Text != "old man" {
		t.Errorf("Text = %q, want the locatable span", result.Findings[0].Text)
	}
}

func TestGenerativeCoercesUnknownCategory(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"bias_instances": [
			{"text_span": "old man", "category": "Generational Outlook", "explanation": "x", "suggested_revision": "y"}
		]
	}`)

	result, err := NewGenerative(mock).Analyze(context.Background(), "The old man can't use a phone anyway.", Config{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Category != analysis.CategoryOther {
		t.Errorf("Findings = %+v, want single Other finding", result.Findings)
	}
}

func TestGenerativeChatFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	_, err := NewGenerative(mock).Analyze(context.Background(), "Some text.", Config{})
	if err == nil {
		t.Fatal("expected error when the model call fails")
	}
	if !strings.Contains(err.Error(), "bias analysis failed") {
		t.Errorf("err = %v", err)
	}
}

func TestGenerativeEmptyText(t *testing.T) {
	if _, err := NewGenerative(providers.NewMockClient()).Analyze(context.Background(), "  ", Config{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}
