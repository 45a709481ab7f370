package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// minClauseTokens is the smallest whitespace-delimited token count a clause
// must have to be analyzed on its own. Shorter fragments carry too little
// context for the classifier to score meaningfully.
const minClauseTokens = 3

// clausePattern is one clause-boundary rule. Patterns are applied in order,
// each one across the entire working set before the next is tried: the comma
// rule runs first so the conjunction rules operate on already-shortened
// fragments and long compound clauses are not over-split. The ordering is an
// empirical policy, not a correctness requirement.
type clausePattern struct {
	re *regexp.Regexp

	// wordAfter restricts splits to boundaries followed by a word character.
	// RE2 has no lookahead, so the check happens after matching without
	// consuming the character.
	wordAfter bool
}

var clausePatterns = []clausePattern{
	{re: regexp.MustCompile(`,\s+`), wordAfter: true},
	{re: regexp.MustCompile(`;\s*`)},
	{re: regexp.MustCompile(`\s+and\s+`)},
	{re: regexp.MustCompile(`\s+but\s+`)},
	{re: regexp.MustCompile(`\s+or\s+`)},
	{re: regexp.MustCompile(`\s+because\s+`)},
	{re: regexp.MustCompile(`\s+since\s+`)},
	{re: regexp.MustCompile(`\s+while\s+`)},
	{re: regexp.MustCompile(`\s+when\s+`)},
	{re: regexp.MustCompile(`\s+if\s+`)},
	{re: regexp.MustCompile(`\s+although\s+`)},
	{re: regexp.MustCompile(`\s+however\s+`)},
	{re: regexp.MustCompile(`\s+therefore\s+`)},
}

// Segment splits text into analyzable clauses: sentence boundaries first,
// then the ordered clause-boundary patterns within each sentence. Fragments
// shorter than minClauseTokens are discarded; if nothing survives, the whole
// trimmed input is returned as a single unit so non-empty input never yields
// an empty result. Segment is pure and keeps no state between calls.
func Segment(text string) []TextUnit {
	var clauses []string
	for _, sentence := range splitSentences(text) {
		working := []string{sentence}
		for _, p := range clausePatterns {
			var next []string
			for _, clause := range working {
				for _, part := range p.split(clause) {
					if trimmed := strings.TrimSpace(part); trimmed != "" {
						next = append(next, trimmed)
					}
				}
			}
			working = next
		}
		clauses = append(clauses, working...)
	}

	units := make([]TextUnit, 0, len(clauses))
	for _, c := range clauses {
		if len(strings.Fields(c)) >= minClauseTokens {
			units = append(units, TextUnit{Text: c})
		}
	}
	if len(units) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			units = append(units, TextUnit{Text: trimmed})
		}
	}
	return units
}

// splitSentences runs the UAX #29 sentence segmenter and trims the results.
func splitSentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		if s := strings.TrimSpace(iter.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// split divides s at every occurrence of the pattern. The separator itself is
// dropped; for wordAfter patterns the following word character is kept as the
// start of the next fragment.
func (p clausePattern) split(s string) []string {
	if !p.wordAfter {
		return p.re.Split(s, -1)
	}

	locs := p.re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return []string{s}
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[1] >= len(s) || !startsWithWordChar(s[loc[1]:]) {
			continue
		}
		parts = append(parts, s[prev:loc[0]])
		prev = loc[1]
	}
	return append(parts, s[prev:])
}

func startsWithWordChar(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
