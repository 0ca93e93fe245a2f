package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(logger.NewNop(), Config{APIKey: "test", BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateJSONParsesOutputText(t *testing.T) {
	var gotFormat map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req responsesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotFormat = req.Text.Format
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"ok\":true}"}]}]}`))
	})
	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "reasoning_check", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["ok"] != true {
		t.Fatalf("unexpected obj %+v", obj)
	}
	if gotFormat["type"] != "json_schema" || gotFormat["strict"] != true {
		t.Fatalf("unexpected format %+v", gotFormat)
	}
}

func TestGenerateJSONSurfacesHTTPErrorWithoutRetry(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	})
	_, err := c.GenerateJSON(context.Background(), "sys", "user", "reasoning_check", map[string]any{"type": "object"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.HTTPStatusCode() != http.StatusTooManyRequests {
		t.Fatalf("expected HTTPError 429, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestGenerateJSONRejectsNonJSONText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"not json"}]}]}`))
	})
	if _, err := c.GenerateJSON(context.Background(), "sys", "user", "reasoning_check", map[string]any{"type": "object"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
