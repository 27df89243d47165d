package research

// Exchange flows through the pipz pipeline.
// It is created fresh for every call and discarded afterwards.
type Exchange struct {
	// Input fields
	Request Request // The caller's request

	// Metadata fields
	RequestID string // Unique identifier for this call

	// Stage outputs (populated by the pipeline)
	Prompt     string // Rendered prompt text
	Body       []byte // Encoded outbound envelope
	StatusCode int    // HTTP status of the provider response, 0 if none
	Raw        []byte // Raw 2xx response body
	Text       string // Extracted answer
}
