package analysis

import (
	"reflect"
	"testing"
)

func TestAggregate(t *testing.T) {
	doc := "one two three four five six seven eight"

	t.Run("risk tier boundaries", func(t *testing.T) {
		cases := []struct {
			total, flagged int
			want           string
		}{
			{10, 0, RiskLow},
			{10, 1, RiskMedium},
			{10, 5, RiskMedium}, // exactly half is not High
			{10, 6, RiskHigh},
			{2, 1, RiskMedium},
			{1, 1, RiskHigh},
		}
		for _, tc := range cases {
			got := Aggregate(doc, tc.total, tc.flagged, nil, tc.flagged)
			if got.RiskLevel != tc.want {
				t.Errorf("Aggregate(total=%d, flagged=%d).RiskLevel = %q, want %q",
					tc.total, tc.flagged, got.RiskLevel, tc.want)
			}
		}
	})

	t.Run("percentage", func(t *testing.T) {
		s := Aggregate(doc, 4, 1, nil, 1)
		if s.FlaggedPercentage != 25 {
			t.Errorf("FlaggedPercentage = %v, want 25", s.FlaggedPercentage)
		}
		if s := Aggregate(doc, 0, 0, nil, 0); s.FlaggedPercentage != 0 {
			t.Errorf("zero-unit percentage = %v, want 0", s.FlaggedPercentage)
		}
	})

	t.Run("bias density floors word count at one", func(t *testing.T) {
		s := Aggregate(doc, 2, 2, nil, 2)
		if want := 2.0 / 8.0; s.BiasDensity != want {
			t.Errorf("BiasDensity = %v, want %v", s.BiasDensity, want)
		}
		if s := Aggregate("", 1, 1, nil, 3); s.BiasDensity != 3 {
			t.Errorf("empty-document density = %v, want 3", s.BiasDensity)
		}
	})

	t.Run("categories deduplicated and sorted", func(t *testing.T) {
		s := Aggregate(doc, 3, 2, []string{"gender", "age", "gender", "", "age"}, 2)
		want := []string{"age", "gender"}
		if !reflect.DeepEqual(s.CategoriesDetected, want) {
			t.Errorf("CategoriesDetected = %v, want %v", s.CategoriesDetected, want)
		}
	})

	t.Run("assessment distinguishes clean results", func(t *testing.T) {
		if s := Aggregate(doc, 5, 0, nil, 0); s.OverallAssessment != "No bias detected" {
			t.Errorf("OverallAssessment = %q", s.OverallAssessment)
		}
		if s := Aggregate(doc, 5, 2, nil, 2); s.OverallAssessment == "No bias detected" {
			t.Error("flagged result should not read as clean")
		}
	})
}
