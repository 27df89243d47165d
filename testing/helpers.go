// Package testing provides utilities for testing code built on research.
package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/research"
)

// TestAPIKey is the key fake servers expect in the "key" query parameter.
const TestAPIKey = "test-key"

// ResponseBuilder provides a fluent interface for constructing Gemini
// generateContent response bodies.
type ResponseBuilder struct {
	candidates []any
	extra      map[string]any
}

// NewResponseBuilder creates a new ResponseBuilder with no candidates.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		candidates: make([]any, 0),
		extra:      make(map[string]any),
	}
}

// WithText appends a candidate whose content holds a single text part.
func (b *ResponseBuilder) WithText(text string) *ResponseBuilder {
	return b.WithParts(text)
}

// WithParts appends a candidate whose content holds one text part per entry.
func (b *ResponseBuilder) WithParts(texts ...string) *ResponseBuilder {
	parts := make([]any, len(texts))
	for i, t := range texts {
		parts[i] = map[string]any{"text": t}
	}
	b.candidates = append(b.candidates, map[string]any{
		"content":      map[string]any{"parts": parts, "role": "model"},
		"finishReason": "STOP",
	})
	return b
}

// WithNullContent appends a candidate whose content is null.
func (b *ResponseBuilder) WithNullContent() *ResponseBuilder {
	b.candidates = append(b.candidates, map[string]any{"content": nil})
	return b
}

// WithNullText appends a candidate whose first part has a null text.
func (b *ResponseBuilder) WithNullText() *ResponseBuilder {
	b.candidates = append(b.candidates, map[string]any{
		"content": map[string]any{"parts": []any{map[string]any{"text": nil}}},
	})
	return b
}

// WithEmptyParts appends a candidate whose content has no parts.
func (b *ResponseBuilder) WithEmptyParts() *ResponseBuilder {
	b.candidates = append(b.candidates, map[string]any{
		"content": map[string]any{"parts": []any{}},
	})
	return b
}

// WithField sets an arbitrary top-level field.
func (b *ResponseBuilder) WithField(key string, value any) *ResponseBuilder {
	b.extra[key] = value
	return b
}

// Build returns the JSON string representation of the response.
func (b *ResponseBuilder) Build() string {
	return string(b.BuildBytes())
}

// BuildBytes returns the JSON bytes of the response.
func (b *ResponseBuilder) BuildBytes() []byte {
	data := make(map[string]any, len(b.extra)+1)
	for k, v := range b.extra {
		data[k] = v
	}
	data["candidates"] = b.candidates
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []byte("{}")
	}
	return jsonBytes
}

// RecordedRequest is a single request received by a Server.
type RecordedRequest struct {
	Method      string
	Key         string
	ContentType string
	Body        []byte
}

// Server is a fake Gemini endpoint backed by httptest.
type Server struct {
	*httptest.Server

	status int
	body   string
	delay  time.Duration

	hits     atomic.Int64
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewServer starts a server that answers every request with status and body.
// The caller must call Close.
func NewServer(status int, body string) *Server {
	s := &Server{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// NewTextServer starts a server that answers 200 with text as the first part.
func NewTextServer(text string) *Server {
	return NewServer(http.StatusOK, NewResponseBuilder().WithText(text).Build())
}

// NewSlowServer starts a server that waits delay before answering, or until
// the client goes away.
func NewSlowServer(delay time.Duration, status int, body string) *Server {
	s := &Server{status: status, body: body, delay: delay}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:      r.Method,
		Key:         r.URL.Query().Get("key"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

// Hits returns the number of requests received.
func (s *Server) Hits() int {
	return int(s.hits.Load())
}

// Requests returns a copy of all recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none was received.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	req := s.requests[len(s.requests)-1]
	return &req
}

// Config returns a research.Config pointing at the server with TestAPIKey.
func (s *Server) Config() research.Config {
	return research.Config{
		BaseURL: s.URL + "/v1beta/models/gemini-1.5-flash:generateContent",
		APIKey:  TestAPIKey,
		Client:  s.Client(),
	}
}

// PromptOf decodes an outbound envelope and returns the prompt text it carries.
func PromptOf(body []byte) (string, error) {
	var env struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	if len(env.Contents) == 0 || len(env.Contents[0].Parts) == 0 {
		return "", nil
	}
	return env.Contents[0].Parts[0].Text, nil
}
