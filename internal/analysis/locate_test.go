package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const locateDoc = "I love sunny days. The old man can't use a phone anyway."

func TestLocate(t *testing.T) {
	t.Run("exact match wins and takes first occurrence", func(t *testing.T) {
		doc := "the cat sat near the cat door"
		span, ok := Locate(doc, "the cat")
		if !ok {
			t.Fatal("expected a match")
		}
		if span.Start != 0 || span.End != 7 {
			t.Errorf("span = %+v, want [0,7)", span)
		}
		if doc[span.Start:span.End] != "the cat" {
			t.Errorf("doc[span] = %q", doc[span.Start:span.End])
		}
	})

	t.Run("case-insensitive match preserves document offsets", func(t *testing.T) {
		span, ok := Locate(locateDoc, "THE OLD MAN")
		if !ok {
			t.Fatal("expected a match")
		}
		if got := locateDoc[span.Start:span.End]; got != "The old man" {
			t.Errorf("doc[span] = %q, want %q", got, "The old man")
		}
	})

	t.Run("token anchor spans first to last token", func(t *testing.T) {
		span, ok := Locate(locateDoc, "old fashioned man")
		if !ok {
			t.Fatal("expected a match")
		}
		if got := locateDoc[span.Start:span.End]; got != "old man" {
			t.Errorf("doc[span] = %q, want %q", got, "old man")
		}
	})

	t.Run("single token anchor caps span to phrase length", func(t *testing.T) {
		span, ok := Locate(locateDoc, "Phone!")
		if !ok {
			t.Fatal("expected a match")
		}
		start := strings.Index(locateDoc, "phone")
		if span.Start != start {
			t.Errorf("Start = %d, want %d", span.Start, start)
		}
		if span.End != start+len("Phone!") {
			t.Errorf("End = %d, want %d", span.End, start+len("Phone!"))
		}
	})

	t.Run("single token anchor never splits a rune", func(t *testing.T) {
		doc := "ab èx here we go"
		span, ok := Locate(doc, "ab!!")
		if !ok {
			t.Fatal("expected a match")
		}
		if !utf8.ValidString(doc[span.Start:span.End]) {
			t.Fatalf("doc[%d:%d] = %q is not valid UTF-8", span.Start, span.End, doc[span.Start:span.End])
		}
		// Four runes from the anchor: "ab è" ends after the two-byte rune.
		if got := doc[span.Start:span.End]; got != "ab è" {
			t.Errorf("doc[span] = %q, want %q", got, "ab è")
		}
	})

	t.Run("fuzzy fallback accepts a long common run", func(t *testing.T) {
		// No anchor path applies end-to-end: "old" anchors but "men" never
		// appears, so the common substring "old m" (5 runes) decides it.
		span, ok := Locate(locateDoc, "old men")
		if !ok {
			t.Fatal("expected a fuzzy match")
		}
		if got := locateDoc[span.Start:span.End]; got != "old m" {
			t.Errorf("doc[span] = %q, want %q", got, "old m")
		}
	})

	t.Run("fuzzy fallback rejects runs below the floor", func(t *testing.T) {
		// Floor for an 11-rune phrase is 5; the best common run is " man"
		// with 4 runes.
		if span, ok := Locate(locateDoc, "elderly man"); ok {
			t.Errorf("expected no match, got %+v (%q)", span, locateDoc[span.Start:span.End])
		}
	})

	t.Run("spans stay within document bounds", func(t *testing.T) {
		phrases := []string{"anyway", "ANYWAY!!", "sunny days ahead", "phone anyway extra words past the end"}
		for _, phrase := range phrases {
			span, ok := Locate(locateDoc, phrase)
			if !ok {
				continue
			}
			if span.Start < 0 || span.End > len(locateDoc) || span.Start > span.End {
				t.Errorf("Locate(%q) = %+v out of bounds", phrase, span)
			}
			if span.Start == span.End {
				t.Errorf("Locate(%q) returned an empty span", phrase)
			}
		}
	})

	t.Run("empty phrase and empty document fail", func(t *testing.T) {
		if _, ok := Locate(locateDoc, "   "); ok {
			t.Error("whitespace phrase should not match")
		}
		if _, ok := Locate("", "anything"); ok {
			t.Error("empty document should not match")
		}
	})
}

func TestMinFuzzyRunes(t *testing.T) {
	cases := []struct {
		phraseRunes int
		want        int
	}{
		{1, 4},
		{7, 4},
		{8, 4},
		{9, 4},
		{10, 5},
		{20, 10},
	}
	for _, tc := range cases {
		if got := minFuzzyRunes(tc.phraseRunes); got != tc.want {
			t.Errorf("minFuzzyRunes(%d) = %d, want %d", tc.phraseRunes, got, tc.want)
		}
	}
}
