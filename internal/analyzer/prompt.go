package analyzer

import "fmt"

// analysisSystemPrompt pins the model to the JSON contract regardless of how
// the user text tries to steer it.
const analysisSystemPrompt = "You are a bias detection expert. Always return valid JSON as specified in the user's request."

const analysisPromptTemplate = `You are a highly perceptive bias-detection assistant. Your task is to scan the input text for any instances of bias, whether overt or nuanced, and to categorize each instance according to the definitions below.

**Bias Categories & Definitions**

1. **Race / Ethnicity**
   Bias based on skin color, ancestry, or cultural background.
   _E.g._ "exotic name," "All [race] people are...."

2. **Gender / Gender Identity**
   Bias around roles or expectations for men, women, non-binary.
   _E.g._ Calling a woman "bossy" vs. a man "assertive."

3. **Age**
   Bias toward or against people based on age.
   _E.g._ "Technophobic seniors," "kids are carefree."

4. **Religion / Belief System**
   Bias for or against faith or lack thereof.
   _E.g._ Labeling someone "fundamentalist" to imply extremism.

5. **Sexual Orientation**
   Bias toward LGBTQ+ identities.
   _E.g._ Treating heterosexuality as "default."

6. **Socioeconomic Status**
   Bias based on wealth, education, or occupation.
   _E.g._ "White-collar snob," "poor people are lazy."

7. **Nationality / Immigration Status**
   Bias tied to country of origin or immigrant status.
   _E.g._ Calling non-citizens "illegals."

8. **Disability**
   Bias toward physical, cognitive, or mental-health differences.
   _E.g._ Using "crazy" to dismiss concerns.

9. **Education Level**
   Bias based on formal schooling or credentials.
   _E.g._ Equating jargon use with intelligence.

10. **Political Ideology**
    Bias around stated or assumed political leanings.
    _E.g._ Calling liberals "snowflakes."

11. **Physical Appearance**
    Bias around weight, height, attractiveness.
    _E.g._ "Big-boned" to soften a weight comment.

**Input Text to Analyze:**
%s

**CRITICAL INSTRUCTIONS:**

1. **NO OVERLAPPING SPANS**: Each piece of text should only be flagged ONCE for bias. Do not create multiple entries that cover the same words or characters.

2. **CHOOSE PRIMARY BIAS ONLY**: If a text span could potentially fall into multiple bias categories, identify and select ONLY the most relevant, primary, or significant bias type. For example:
   - If "his accent" could be both racial and nationality bias, choose the most contextually relevant one
   - If "she's too emotional" could be both gender and age bias, select the primary bias being expressed

3. **PRIORITIZE MOST HARMFUL/SIGNIFICANT**: When multiple bias types could apply, prioritize:
   - More specific over general biases
   - Direct discrimination over subtle implications
   - Protected characteristics over social preferences

4. **AVOID REDUNDANCY**: Do not flag the same concept multiple times with different categories.

**Instructions:**
Please analyze the text and return your findings in the following JSON format. If no bias is detected, return an empty array for "bias_instances".

{
  "bias_instances": [
    {
      "text_span": "exact words or phrase from the input",
      "category": "one of the 11 categories listed above",
      "explanation": "why this span is biased and what assumption or stereotype it reflects",
      "suggested_revision": "a neutral or inclusive way to rephrase it"
    }
  ]
}

Return ONLY the JSON response, no additional text or formatting.`

// analysisPrompt renders the user prompt for one document.
func analysisPrompt(text string) string {
	return fmt.Sprintf(analysisPromptTemplate, text)
}

// biasInstancesSchema validates the shape of the model's reply before any
// instance is trusted. Category membership is checked separately so an
// off-taxonomy value degrades to "Other" instead of rejecting the reply.
const biasInstancesSchema = `{
  "type": "object",
  "properties": {
    "bias_instances": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text_span": {"type": "string"},
          "category": {"type": "string"},
          "explanation": {"type": "string"},
          "suggested_revision": {"type": "string"}
        },
        "required": ["text_span", "category"]
      }
    }
  },
  "required": ["bias_instances"]
}`
