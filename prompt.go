package research

import "fmt"

// Prompt is a rendered instruction plus the content it applies to.
type Prompt struct {
	Instruction string // Fixed prefix for the operation
	Content     string // Caller content, never escaped or trimmed
}

// Render joins the instruction and the content.
// The content follows the instruction immediately and is kept verbatim.
func (p *Prompt) Render() string {
	return p.Instruction + p.Content
}

// NewPrompt builds the prompt for a request.
func NewPrompt(req Request) (*Prompt, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	inst, ok := req.Operation.Instruction()
	if !ok {
		tag := req.Operation.String()
		return nil, &Error{
			Kind:      KindUnknownOperation,
			Operation: tag,
			Message:   fmt.Sprintf("unknown operation %q", tag),
		}
	}
	return &Prompt{Instruction: inst, Content: req.Content}, nil
}

// BuildPrompt renders the full prompt text for a request.
func BuildPrompt(req Request) (string, error) {
	p, err := NewPrompt(req)
	if err != nil {
		return "", err
	}
	return p.Render(), nil
}

// validateRequest checks that both request fields are present.
func validateRequest(req Request) error {
	if req.Content == "" {
		return newError(KindInvalidRequest, "content is required")
	}
	if req.Operation == 0 {
		return newError(KindInvalidRequest, "operation is required")
	}
	return nil
}
