package providers

import (
	"encoding/json"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		raw, err := ParseStructuredJSON(`{"bias_instances":[]}`)
		if err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("result not valid JSON: %v", err)
		}
	})

	t.Run("json code fence", func(t *testing.T) {
		content := "```json\n{\"bias_instances\":[{\"text_span\":\"x\"}]}\n```"
		raw, err := ParseStructuredJSON(content)
		if err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
		var doc struct {
			BiasInstances []map[string]string `json:"bias_instances"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("result not valid JSON: %v", err)
		}
		if len(doc.BiasInstances) != 1 {
			t.Errorf("got %d instances, want 1", len(doc.BiasInstances))
		}
	})

	t.Run("JSON surrounded by prose", func(t *testing.T) {
		content := "Here is my analysis:\n{\"bias_instances\":[]}\nLet me know if you need more."
		if _, err := ParseStructuredJSON(content); err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
	})

	t.Run("unparseable content", func(t *testing.T) {
		if _, err := ParseStructuredJSON("I could not produce JSON, sorry."); err == nil {
			t.Fatal("expected error")
		}
		if _, err := ParseStructuredJSON(""); err == nil {
			t.Fatal("expected error for empty content")
		}
	})
}

func TestValidateStructuredJSON(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"required": ["bias_instances"],
		"properties": {
			"bias_instances": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["text_span", "category"],
					"properties": {
						"text_span": {"type": "string"},
						"category": {"type": "string"}
					}
				}
			}
		}
	}`)

	t.Run("valid document", func(t *testing.T) {
		doc := json.RawMessage(`{"bias_instances":[{"text_span":"old man","category":"Age"}]}`)
		if err := ValidateStructuredJSON(schema, doc); err != nil {
			t.Errorf("ValidateStructuredJSON() error = %v", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		doc := json.RawMessage(`{"bias_instances":[{"text_span":"old man"}]}`)
		if err := ValidateStructuredJSON(schema, doc); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("empty schema is a no-op", func(t *testing.T) {
		if err := ValidateStructuredJSON(nil, json.RawMessage(`{}`)); err != nil {
			t.Errorf("ValidateStructuredJSON() error = %v", err)
		}
	})
}
