package research

import "encoding/json"

// Extract returns the text of the first part of the first candidate in a raw
// generateContent response.
//
// A body that is not a valid envelope yields ErrMalformedResponse with the
// parser message. A valid envelope with no candidate, no content, no part or
// no text yields ErrNoContent. A present text is returned as is, even when empty.
func Extract(raw []byte) (string, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", wrapError(KindMalformedResponse, "failed to parse response", err)
	}
	text, ok := firstText(&resp)
	if !ok {
		return "", newError(KindNoContent, "no valid response found")
	}
	return text, nil
}

// firstText walks candidates[0].content.parts[0].text, stopping at the first
// absent level. Later candidates and parts are never consulted.
func firstText(resp *generateContentResponse) (string, bool) {
	if len(resp.Candidates) == 0 {
		return "", false
	}
	c := resp.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return "", false
	}
	t := c.Parts[0].Text
	if t == nil {
		return "", false
	}
	return *t, true
}

// finishReason returns the first candidate's finish reason, if any.
func finishReason(raw []byte) string {
	var resp generateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Candidates) == 0 {
		return ""
	}
	return resp.Candidates[0].FinishReason
}
