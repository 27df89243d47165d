package research

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
)

// MockTransport is a Doer that answers without touching the network.
// It records every request it receives and is safe for concurrent use.
type MockTransport struct {
	callback func(*http.Request) (int, string, error)
	calls    atomic.Int64

	mu     sync.Mutex
	bodies [][]byte
	urls   []string
}

// NewMockTransport returns a transport that always answers with status and body.
func NewMockTransport(status int, body string) *MockTransport {
	return NewMockTransportWithCallback(func(*http.Request) (int, string, error) {
		return status, body, nil
	})
}

// NewMockTransportWithText returns a transport that answers 200 with a
// well-formed response carrying text as the first part of the first candidate.
func NewMockTransportWithText(text string) *MockTransport {
	quoted, err := json.Marshal(text)
	if err != nil {
		quoted = []byte(`""`)
	}
	return NewMockTransport(http.StatusOK, fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%s}]}}]}`, quoted))
}

// NewMockTransportWithError returns a transport whose round trip always fails.
func NewMockTransportWithError(err error) *MockTransport {
	return NewMockTransportWithCallback(func(*http.Request) (int, string, error) {
		return 0, "", err
	})
}

// NewMockTransportWithCallback returns a transport that delegates to callback.
func NewMockTransportWithCallback(callback func(*http.Request) (status int, body string, err error)) *MockTransport {
	return &MockTransport{callback: callback}
}

// Do implements Doer.
func (m *MockTransport) Do(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
		req.Body = io.NopCloser(bytes.NewReader(b))
	}
	m.mu.Lock()
	m.bodies = append(m.bodies, body)
	m.urls = append(m.urls, req.URL.String())
	m.mu.Unlock()

	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	status, respBody, err := m.callback(req)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(respBody)),
		Request:    req,
	}, nil
}

// Calls returns how many requests the transport received.
func (m *MockTransport) Calls() int {
	return int(m.calls.Load())
}

// Bodies returns a copy of the request bodies received so far.
func (m *MockTransport) Bodies() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.bodies))
	copy(out, m.bodies)
	return out
}

// URLs returns a copy of the request URLs received so far.
func (m *MockTransport) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}
