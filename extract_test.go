package research

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		wantKind Kind
	}{
		{
			name: "single candidate",
			body: `{"candidates":[{"content":{"parts":[{"text":"answer"}]}}]}`,
			want: "answer",
		},
		{
			name: "extra fields ignored",
			body: `{"candidates":[{"content":{"role":"model","parts":[{"text":"answer"}]},"finishReason":"STOP","index":0}],"usageMetadata":{"totalTokenCount":3},"modelVersion":"x"}`,
			want: "answer",
		},
		{
			name: "only first candidate consulted",
			body: `{"candidates":[{"content":{"parts":[{"text":"first"}]}},{"content":{"parts":[{"text":"second"}]}}]}`,
			want: "first",
		},
		{
			name: "only first part consulted",
			body: `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`,
			want: "a",
		},
		{
			name: "empty text is present",
			body: `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			want: "",
		},
		{name: "empty candidates", body: `{"candidates":[]}`, wantKind: KindNoContent},
		{name: "missing candidates", body: `{}`, wantKind: KindNoContent},
		{name: "null candidates", body: `{"candidates":null}`, wantKind: KindNoContent},
		{name: "null body", body: `null`, wantKind: KindNoContent},
		{name: "null candidate", body: `{"candidates":[null]}`, wantKind: KindNoContent},
		{name: "null content", body: `{"candidates":[{"content":null}]}`, wantKind: KindNoContent},
		{name: "missing content", body: `{"candidates":[{"finishReason":"SAFETY"}]}`, wantKind: KindNoContent},
		{name: "empty parts", body: `{"candidates":[{"content":{"parts":[]}}]}`, wantKind: KindNoContent},
		{name: "missing parts", body: `{"candidates":[{"content":{}}]}`, wantKind: KindNoContent},
		{name: "null text", body: `{"candidates":[{"content":{"parts":[{"text":null}]}}]}`, wantKind: KindNoContent},
		{name: "missing text", body: `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, wantKind: KindNoContent},
		{
			name:     "first part without text, second with",
			body:     `{"candidates":[{"content":{"parts":[{},{"text":"late"}]}}]}`,
			wantKind: KindNoContent,
		},
		{name: "not json", body: `Internal Server Error`, wantKind: KindMalformedResponse},
		{name: "empty body", body: ``, wantKind: KindMalformedResponse},
		{name: "truncated json", body: `{"candidates":[{"content":`, wantKind: KindMalformedResponse},
		{name: "array body", body: `[]`, wantKind: KindMalformedResponse},
		{name: "candidates wrong type", body: `{"candidates":"nope"}`, wantKind: KindMalformedResponse},
		{name: "text wrong type", body: `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, wantKind: KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract([]byte(tt.body))
			if tt.wantKind != 0 {
				if err == nil {
					t.Fatalf("Expected %s error, got text %q", tt.wantKind, got)
				}
				if KindOf(err) != tt.wantKind {
					t.Errorf("Expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
				}
				if got != "" {
					t.Errorf("Expected no partial text, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	texts := []string{
		"plain",
		"# Heading\n\n- bullet one\n- bullet two\n",
		`with "quotes" and \backslashes\`,
		"unicode: héllo 世界 🚀",
		"<b>&amp;</b>",
		strings.Repeat("x", 100000),
	}
	for _, text := range texts {
		body, err := json.Marshal(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
			},
		})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		got, err := Extract(body)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if got != text {
			t.Errorf("Round trip mismatch: expected %q, got %q", text, got)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	bodies := []string{
		`{"candidates":[{"content":{"parts":[{"text":"answer"}]}}]}`,
		`{"candidates":[]}`,
		`not json`,
	}
	for _, body := range bodies {
		first, firstErr := Extract([]byte(body))
		second, secondErr := Extract([]byte(body))
		if first != second {
			t.Errorf("Expected identical text, got %q and %q", first, second)
		}
		if KindOf(firstErr) != KindOf(secondErr) {
			t.Errorf("Expected identical error kinds, got %s and %s", KindOf(firstErr), KindOf(secondErr))
		}
	}
}

func TestExtract_MalformedDistinctFromNoContent(t *testing.T) {
	_, malformed := Extract([]byte(`nope`))
	_, empty := Extract([]byte(`{"candidates":[]}`))

	if !errors.Is(malformed, ErrMalformedResponse) || errors.Is(malformed, ErrNoContent) {
		t.Errorf("Expected only ErrMalformedResponse, got %v", malformed)
	}
	if !errors.Is(empty, ErrNoContent) || errors.Is(empty, ErrMalformedResponse) {
		t.Errorf("Expected only ErrNoContent, got %v", empty)
	}
}

func TestExtract_MalformedOmitsBody(t *testing.T) {
	body := `this body is secret and should not be echoed`
	_, err := Extract([]byte(body))
	if err == nil {
		t.Fatal("Expected error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("Error leaked the raw body: %q", err.Error())
	}
	var e *Error
	if !errors.As(err, &e) || e.Err == nil {
		t.Error("Expected the parser error to be wrapped")
	}
}
