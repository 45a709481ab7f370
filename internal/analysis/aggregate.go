package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Aggregate merges per-unit or per-finding outcomes into a document summary.
//
// flagged counts units (classifier mode) or findings (generative mode). The
// risk tier is a fixed policy, not configurable per request: High when more
// than half the units are flagged, Low when nothing is, Medium otherwise.
// Bias density is findings per word of the document, with the word count
// floored at 1.
func Aggregate(document string, totalUnits, flagged int, categories []string, findingCount int) Summary {
	percentage := 0.0
	if totalUnits > 0 {
		percentage = float64(flagged) / float64(totalUnits) * 100
	}

	risk := RiskMedium
	switch {
	case flagged == 0:
		risk = RiskLow
	case flagged*2 > totalUnits:
		risk = RiskHigh
	}

	assessment := "No bias detected"
	if flagged > 0 {
		assessment = fmt.Sprintf("Contains bias (%d of %d units flagged)", flagged, totalUnits)
	}

	words := len(strings.Fields(document))
	if words < 1 {
		words = 1
	}

	return Summary{
		TotalUnitsAnalyzed: totalUnits,
		FlaggedCount:       flagged,
		FlaggedPercentage:  percentage,
		CategoriesDetected: distinctSorted(categories),
		OverallAssessment:  assessment,
		RiskLevel:          risk,
		BiasDensity:        float64(findingCount) / float64(words),
	}
}

// distinctSorted deduplicates and sorts so repeated runs on the same input
// produce byte-identical summaries.
func distinctSorted(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
