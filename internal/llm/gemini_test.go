package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/abhisek/masteryengine/internal/curriculum"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     12,
			"candidatesTokenCount": 34,
			"totalTokenCount":      46,
		},
	}
}

func TestGeminiProvider_Exam(t *testing.T) {
	var path string
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply(varsExam, "STOP"))
	}

	p := newTestGeminiProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You write exams for programming lessons.",
		Messages:  []Message{{Role: RoleUser, Content: "Write an exam for the lesson Variables."}},
		Schema:    examSchema(),
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != varsExam {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 46 || resp.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected usage/model: %+v %q", resp.Usage, resp.Model)
	}
	if !strings.HasSuffix(path, "models/gemini-2.5-flash:generateContent") {
		t.Errorf("unexpected request path %q", path)
	}
	gc, _ := body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" || gc["responseSchema"] == nil {
		t.Errorf("expected structured output config, got %v", gc)
	}
}

func TestGeminiProvider_TruncatedExam(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply(varsExamCut, "MAX_TOKENS"))
	}

	p := newTestGeminiProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Write an exam."}},
		Schema:    examSchema(),
		MaxTokens: 48,
	})
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
	if trunc.Limit != 48 {
		t.Fatalf("expected limit 48, got %d", trunc.Limit)
	}
}

func TestMapGeminiError(t *testing.T) {
	limited := fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"})
	var rl *ErrRateLimit
	if !errors.As(mapGeminiError(limited), &rl) {
		t.Fatalf("expected ErrRateLimit for a 429 APIError value")
	}

	var unavail *ErrProviderUnavailable
	if !errors.As(mapGeminiError(genai.APIError{Code: http.StatusServiceUnavailable}), &unavail) {
		t.Fatal("expected ErrProviderUnavailable for a 503")
	}
	if !errors.As(mapGeminiError(errors.New("dial tcp: refused")), &unavail) {
		t.Fatal("expected ErrProviderUnavailable for a transport error")
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":       map[string]any{"type": "string"},
			"minutes":    map[string]any{"type": "integer"},
			"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"name", "minutes"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["name"].Type != "STRING" {
		t.Fatalf("expected STRING for name, got %s", schema.Properties["name"].Type)
	}
	if schema.Properties["minutes"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for minutes, got %s", schema.Properties["minutes"].Type)
	}
	if len(schema.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["difficulty"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiSchema_Bounds(t *testing.T) {
	schema := buildGeminiSchema(curriculum.ExamSchema)

	questions := schema.Properties["questions"]
	if questions == nil || questions.MinItems == nil || *questions.MinItems != 1 {
		t.Fatalf("expected questions.minItems = 1, got %+v", questions)
	}
	score := schema.Properties["passing_score"]
	if score.Minimum == nil || *score.Minimum != 0 || score.Maximum == nil || *score.Maximum != 100 {
		t.Fatalf("expected passing_score bounded 0..100, got %+v", score)
	}
	if questions.Items.Properties["kind"].Enum[0] != "multiple-choice" {
		t.Fatalf("expected nested enum, got %v", questions.Items.Properties["kind"].Enum)
	}
}

func TestStringList(t *testing.T) {
	if got := stringList([]string{"id", "questions"}); len(got) != 2 {
		t.Errorf("stringList([]string) = %v", got)
	}
	if got := stringList([]any{"id", 3, "kind"}); len(got) != 2 || got[1] != "kind" {
		t.Errorf("stringList([]any) = %v", got)
	}
	if got := stringList(nil); got != nil {
		t.Errorf("stringList(nil) = %v", got)
	}
}

func TestNumber(t *testing.T) {
	for _, v := range []any{3, int64(3), 3.0} {
		if n, ok := number(v); !ok || n != 3 {
			t.Errorf("number(%#v) = %v, %v", v, n, ok)
		}
	}
	if _, ok := number("3"); ok {
		t.Error("strings are not numbers")
	}
}
