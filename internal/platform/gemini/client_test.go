package gemini

import (
	"reflect"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":               "{\"a\":1}",
		"```json\n{\"a\":1}\n```": "{\"a\":1}",
		"```\n{\"a\":1}```":       "{\"a\":1}",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q)=%q want %q", in, got, want)
		}
	}
}

func TestContentConfigCarriesResponseSchema(t *testing.T) {
	temp := float32(0.2)
	c := &Client{model: "gemini-test", temp: &temp}
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"symptoms": map[string]any{"type": "array"}},
		"required":   []any{"symptoms"},
	}

	cfg, err := c.contentConfig("List symptoms.", "reasoning_symptoms", schema)
	if err != nil {
		t.Fatalf("contentConfig: %v", err)
	}
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("mime type: %q", cfg.ResponseMIMEType)
	}
	if !reflect.DeepEqual(cfg.ResponseJsonSchema, schema) {
		t.Fatalf("response schema not set: %#v", cfg.ResponseJsonSchema)
	}
	if cfg.Temperature == nil || *cfg.Temperature != temp {
		t.Fatalf("temperature not forwarded: %v", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil || len(cfg.SystemInstruction.Parts) == 0 {
		t.Fatalf("missing system instruction")
	}
	text := cfg.SystemInstruction.Parts[0].Text
	if !strings.Contains(text, "List symptoms.") || strings.Contains(text, "\"required\"") {
		t.Fatalf("unexpected system instruction:\n%s", text)
	}

	if _, err := c.contentConfig("sys", "", schema); err == nil {
		t.Fatalf("expected error for empty schema name")
	}
	if _, err := c.contentConfig("sys", "reasoning_symptoms", nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}
