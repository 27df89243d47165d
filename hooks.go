package research

import "github.com/zoobzio/capitan"

// Signals for hook events.
const (
	RequestStarted        = capitan.Signal("research.request.started")
	RequestCompleted      = capitan.Signal("research.request.completed")
	RequestFailed         = capitan.Signal("research.request.failed")
	ProviderCallStarted   = capitan.Signal("research.provider.call.started")
	ProviderCallCompleted = capitan.Signal("research.provider.call.completed")
	ProviderCallFailed    = capitan.Signal("research.provider.call.failed")
	ResponseParseFailed   = capitan.Signal("research.response.failed")
	ResponseEmpty         = capitan.Signal("research.response.empty")
)

// Keys for hook event fields.
// No key ever carries the API key or a raw response body.
var (
	// Request identification.
	RequestIDKey = capitan.NewStringKey("research.request.id")
	OperationKey = capitan.NewStringKey("research.operation")

	// Sizes.
	ContentLengthKey = capitan.NewIntKey("research.content.length")
	PromptLengthKey  = capitan.NewIntKey("research.prompt.length")
	OutputLengthKey  = capitan.NewIntKey("research.output.length")

	// Error information.
	ErrorKey     = capitan.NewStringKey("research.error")
	ErrorKindKey = capitan.NewStringKey("research.error.kind")

	// Provider call.
	EndpointKey       = capitan.NewStringKey("research.endpoint")
	HTTPStatusCodeKey = capitan.NewIntKey("research.http.status.code")
	DurationMsKey     = capitan.NewIntKey("research.duration.ms")
	FinishReasonKey   = capitan.NewStringKey("research.response.finish.reason")
)
