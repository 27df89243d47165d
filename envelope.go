package research

// Wire types for the Gemini generateContent API.

// generateContentRequest is the outbound envelope: one content holding one
// part with the rendered prompt.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

func newGenerateContentRequest(prompt string) generateContentRequest {
	return generateContentRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
}

// generateContentResponse is the inbound envelope. Every level is optional;
// pointers distinguish an absent field from an empty one.
type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      *candidateContent `json:"content"`
	FinishReason string            `json:"finishReason,omitempty"`
}

type candidateContent struct {
	Parts []candidatePart `json:"parts"`
}

type candidatePart struct {
	Text *string `json:"text"`
}

// errorResponse is the body Gemini sends with non-2xx statuses.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
