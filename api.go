// Package research turns a piece of text into a Gemini answer for one of a
// fixed set of operations.
//
// A call renders an operation-specific instruction prompt around the content,
// posts it to the Gemini generateContent endpoint and extracts the first text
// part of the first candidate. Every failure is reported as a typed *Error so
// callers can branch with errors.Is instead of matching text:
//
//   - ErrInvalidRequest: content or operation missing
//   - ErrUnknownOperation: operation has no instruction template
//   - ErrTransport: connection failure, timeout or non-2xx status
//   - ErrMalformedResponse: response body is not a valid envelope
//   - ErrNoContent: well-formed response without any text
//   - ErrCancelled: the caller's context ended the call
//   - ErrInvalidConfig: New was given an incomplete Config
//
// Basic usage:
//
//	cfg, _ := research.LoadConfig("research.yaml")
//	assistant, _ := research.New(cfg)
//	result, err := assistant.Process(ctx, research.Request{
//	    Content:   "The sky is blue.",
//	    Operation: research.OperationSummarize,
//	})
//	if errors.Is(err, research.ErrNoContent) {
//	    // the model produced nothing
//	}
//	fmt.Println(result.Text)
package research

import "net/http"

// Request is a single unit of work: the content to process and the operation
// to apply to it. A Request is a value and is not modified by the assistant.
type Request struct {
	Content   string    // Required: opaque text, sent verbatim
	Operation Operation // Required: which instruction wraps the content
}

// Result is the successful outcome of a Process call.
type Result struct {
	RequestID string    // Unique identifier for this call, also carried on hooks
	Operation Operation // Operation that produced the text
	Text      string    // First text part of the first candidate
}

// Doer performs a single HTTP round trip.
// *http.Client satisfies it and is safe for concurrent use.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}
