package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open [Start, End) byte range into a document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var wordTokenRE = regexp.MustCompile(`\w+`)

// minFuzzyRunes is the acceptance floor for the fuzzy fallback: a common
// substring shorter than max(4, len(phrase)/2) runes is rejected. The formula
// is an empirical tuning knob kept for compatibility with prior results.
func minFuzzyRunes(phraseRunes int) int {
	n := phraseRunes / 2
	if n < 4 {
		n = 4
	}
	return n
}

// Locate recovers the byte offsets of phrase within document. Upstream
// analyzers report phrases as free text and cannot be trusted to quote the
// source verbatim (paraphrasing, case changes, whitespace normalization), so
// four strategies run in strict priority order, first success wins:
//
//  1. exact substring match
//  2. case-insensitive substring match
//  3. token-anchored match on word tokens
//  4. longest common contiguous substring, case-insensitive, accepted only at
//     or above the minFuzzyRunes floor
//
// Within each strategy the first position scanning left to right wins; no
// later "better" match is considered. The returned span always satisfies
// 0 <= Start <= End <= len(document). ok is false when nothing acceptable was
// found, and callers drop the finding rather than emit sentinel offsets.
func Locate(document, phrase string) (Span, bool) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || document == "" {
		return Span{}, false
	}

	// Strategy 1: exact.
	if i := strings.Index(document, phrase); i >= 0 {
		return Span{Start: i, End: i + len(phrase)}, true
	}

	docRunes := []rune(document)
	byteOff := runeByteOffsets(document, docRunes)
	docLower := lowerRunes(docRunes)
	phraseRunes := []rune(phrase)
	phraseLower := lowerRunes(phraseRunes)

	// Strategy 2: case-insensitive. Folding happens rune by rune so offsets
	// map cleanly back to the original bytes.
	if i := indexRunes(docLower, phraseLower); i >= 0 {
		return Span{Start: byteOff[i], End: byteOff[i+len(phraseRunes)]}, true
	}

	// Strategy 3: token-anchored.
	if span, ok := locateByTokens(document, phrase); ok {
		return span, true
	}

	// Strategy 4: fuzzy fallback.
	length, docEnd := longestCommonRun(docLower, phraseLower)
	if length >= minFuzzyRunes(len(phraseRunes)) {
		return Span{Start: byteOff[docEnd-length], End: byteOff[docEnd]}, true
	}

	return Span{}, false
}

// locateByTokens anchors on the phrase's first word token. Multi-token
// phrases span from the anchor to the first later occurrence of the phrase's
// last token; single-token phrases span the anchor, capped to the phrase's
// rune length or the document end, whichever is smaller.
func locateByTokens(document, phrase string) (Span, bool) {
	phraseTokens := wordTokenRE.FindAllString(phrase, -1)
	if len(phraseTokens) == 0 {
		return Span{}, false
	}

	docTokens := wordTokenRE.FindAllStringIndex(document, -1)
	anchor := -1
	for i, loc := range docTokens {
		if strings.EqualFold(document[loc[0]:loc[1]], phraseTokens[0]) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return Span{}, false
	}

	start := docTokens[anchor][0]
	if len(phraseTokens) == 1 {
		// Cap by the phrase's rune length, not its byte length, so the end
		// offset never lands inside a multi-byte rune.
		docRunes := []rune(document)
		byteOff := runeByteOffsets(document, docRunes)
		endRune := utf8.RuneCountInString(document[:start]) + len([]rune(phrase))
		if endRune > len(docRunes) {
			endRune = len(docRunes)
		}
		return Span{Start: start, End: byteOff[endRune]}, true
	}

	last := phraseTokens[len(phraseTokens)-1]
	for _, loc := range docTokens[anchor+1:] {
		if strings.EqualFold(document[loc[0]:loc[1]], last) {
			return Span{Start: start, End: loc[1]}, true
		}
	}
	return Span{}, false
}

// longestCommonRun finds the longest common contiguous rune sequence by
// exhaustive pairwise comparison. Returns its length and the exclusive end
// index in doc; on equal lengths the earliest document position is kept.
func longestCommonRun(doc, phrase []rune) (length, docEnd int) {
	if len(doc) == 0 || len(phrase) == 0 {
		return 0, 0
	}

	prev := make([]int, len(phrase)+1)
	cur := make([]int, len(phrase)+1)
	for i := 1; i <= len(doc); i++ {
		for j := 1; j <= len(phrase); j++ {
			if doc[i-1] == phrase[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > length {
					length = cur[j]
					docEnd = i
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return length, docEnd
}

func runeByteOffsets(s string, runes []rune) []int {
	offs := make([]int, len(runes)+1)
	i := 0
	for pos := range s {
		offs[i] = pos
		i++
	}
	offs[len(runes)] = len(s)
	return offs
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
