package research

import (
	"fmt"
	"strconv"
)

// Operation selects the instruction that wraps the content.
// The zero value means "no operation" and is rejected as an invalid request.
type Operation uint8

// Supported operations.
const (
	OperationSummarize Operation = iota + 1
	OperationSuggest
)

// Operation tags as they appear on the inbound string surface.
const (
	TagSummarize = "summarize"
	TagSuggest   = "suggest"
)

// Instruction prefixes. The content follows the prefix directly.
const (
	summarizeInstruction = "Provide a clear and concise summary of the following text in a few sentences:\n\n"
	suggestInstruction   = "Based on the following content: suggest related topics and further reading. " +
		"Format the response with clear headings and bullet points:\n\n"
)

// instructions maps every Operation to its prefix. It is never mutated.
var instructions = map[Operation]string{
	OperationSummarize: summarizeInstruction,
	OperationSuggest:   suggestInstruction,
}

// Operations returns every supported operation in declaration order.
func Operations() []Operation {
	return []Operation{OperationSummarize, OperationSuggest}
}

// ParseOperation resolves an operation tag.
// An empty tag is an invalid request; any other unrecognized tag is an
// unknown operation. Matching is exact.
func ParseOperation(tag string) (Operation, error) {
	switch tag {
	case TagSummarize:
		return OperationSummarize, nil
	case TagSuggest:
		return OperationSuggest, nil
	case "":
		return 0, newError(KindInvalidRequest, "operation is required")
	default:
		return 0, &Error{
			Kind:      KindUnknownOperation,
			Operation: tag,
			Message:   fmt.Sprintf("unknown operation %q", tag),
		}
	}
}

// String returns the operation tag.
func (o Operation) String() string {
	switch o {
	case OperationSummarize:
		return TagSummarize
	case OperationSuggest:
		return TagSuggest
	default:
		return "Operation(" + strconv.Itoa(int(o)) + ")"
	}
}

// Instruction returns the instruction prefix for the operation.
func (o Operation) Instruction() (string, bool) {
	inst, ok := instructions[o]
	return inst, ok
}
