package analyzer

import (
	"fmt"
	"strings"

	"github.com/biaslens/biaslens/internal/analysis"
)

// categoryKeywords maps each label to surface words that, when present in a
// flagged clause, suggest which group the language targets. Keyword hits only
// enrich the justification text; they never affect which labels are retained.
var categoryKeywords = map[string][]string{
	"racial":        {"race", "ethnicity", "color", "black", "white", "asian", "hispanic"},
	"religious":     {"muslim", "christian", "jewish", "religion", "faith", "church"},
	"gender":        {"woman", "man", "female", "male", "gender", "she", "he"},
	"age":           {"young", "old", "elderly", "teenager", "adult", "age"},
	"nationality":   {"american", "foreign", "immigrant", "nationality", "country"},
	"sexuality":     {"gay", "lesbian", "homosexual", "straight", "lgbt"},
	"socioeconomic": {"poor", "rich", "wealthy", "class", "income", "money"},
	"educational":   {"smart", "stupid", "educated", "ignorant", "school", "college"},
	"disability":    {"disabled", "handicapped", "blind", "deaf", "mental"},
	"political":     {"liberal", "conservative", "democrat", "republican", "politics"},
	"physical":      {"fat", "thin", "tall", "short", "appearance", "looks"},
}

// buildJustification produces the human-readable explanation attached to a
// flagged unit. Labels must already be filtered and sorted by confidence.
func buildJustification(clause string, labels []analysis.LabelScore) string {
	if len(labels) == 0 {
		return "No significant bias detected in this text."
	}

	var parts []string
	if len(labels) == 1 {
		parts = append(parts, fmt.Sprintf("Detected %s bias with %.2f confidence.",
			labels[0].Label, labels[0].Confidence))
	} else {
		names := make([]string, len(labels))
		for i, l := range labels {
			names[i] = l.Label
		}
		parts = append(parts, fmt.Sprintf("Multiple bias types detected: %s.",
			strings.Join(names, ", ")))
	}

	clauseLower := strings.ToLower(clause)
	var hinted []string
	for _, l := range labels {
		for _, kw := range categoryKeywords[l.Label] {
			if strings.Contains(clauseLower, kw) {
				hinted = append(hinted, l.Label)
				break
			}
		}
	}
	if len(hinted) > 0 {
		parts = append(parts, fmt.Sprintf("Language patterns suggest potential bias targeting: %s.",
			strings.Join(hinted, ", ")))
	}

	// Labels arrive sorted descending, so the first carries the maximum.
	switch max := labels[0].Confidence; {
	case max > 0.8:
		parts = append(parts, "High confidence in bias detection.")
	case max > 0.6:
		parts = append(parts, "Moderate confidence in bias detection.")
	default:
		parts = append(parts, "Low confidence - may require human review.")
	}

	return strings.Join(parts, " ")
}
