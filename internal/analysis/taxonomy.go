package analysis

// ClassifierLabels maps classifier head indices to bias-type labels. The
// order matches the fine-tuned model's output layer and must not change
// without retraining.
var ClassifierLabels = []string{
	"racial",
	"religious",
	"gender",
	"age",
	"nationality",
	"sexuality",
	"socioeconomic",
	"educational",
	"disability",
	"political",
	"physical",
}

// GenerativeCategories is the closed taxonomy a generative backend may use.
// Anything outside this set is coerced to CategoryOther.
var GenerativeCategories = []string{
	"Race / Ethnicity",
	"Gender / Gender Identity",
	"Age",
	"Religion / Belief System",
	"Sexual Orientation",
	"Socioeconomic Status",
	"Nationality / Immigration Status",
	"Disability",
	"Education Level",
	"Political Ideology",
	"Physical Appearance",
}

// CategoryOther is the fallback for categories outside the taxonomy.
const CategoryOther = "Other"

// NormalizeCategory returns category if it belongs to the generative
// taxonomy, CategoryOther otherwise.
func NormalizeCategory(category string) string {
	for _, c := range GenerativeCategories {
		if c == category {
			return category
		}
	}
	return CategoryOther
}
