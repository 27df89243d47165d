package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Assistant renders prompts, calls the provider and extracts answers.
// It holds no mutable state and is safe for concurrent use.
type Assistant struct {
	pipeline pipz.Chainable[*Exchange]
	provider *provider
}

// New creates an Assistant from cfg.
// Options wrap the provider-call stage only, so a timeout bounds the network
// round trip and never the local stages.
func New(cfg Config, opts ...Option) (*Assistant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	p := newProvider(cfg)

	// Apply options to the terminal stage
	call := newTerminal(p)
	for _, opt := range opts {
		call = opt(call)
	}

	pipeline := pipz.NewSequence[*Exchange]("process",
		validateStage(),
		promptStage(),
		encodeStage(),
		call,
		extractStage(),
	)

	return &Assistant{
		pipeline: pipeline,
		provider: p,
	}, nil
}

// GetPipeline returns the internal pipeline for composition.
func (a *Assistant) GetPipeline() pipz.Chainable[*Exchange] {
	return a.pipeline
}

// Process runs one request end to end.
// Exactly one of the returned values is non-nil. Errors are always *Error.
func (a *Assistant) Process(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.New().String()
	op := req.Operation.String()

	capitan.Info(ctx, RequestStarted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(op),
		ContentLengthKey.Field(len(req.Content)),
	)

	ex := &Exchange{Request: req, RequestID: requestID}
	processed, err := a.pipeline.Process(ctx, ex)
	if err != nil {
		e := a.normalize(ctx, err)
		capitan.Error(ctx, RequestFailed,
			RequestIDKey.Field(requestID),
			OperationKey.Field(op),
			ErrorKindKey.Field(e.Kind.String()),
			ErrorKey.Field(e.Error()),
		)
		return nil, e
	}

	capitan.Info(ctx, RequestCompleted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(op),
		OutputLengthKey.Field(len(processed.Text)),
	)

	return &Result{
		RequestID: requestID,
		Operation: req.Operation,
		Text:      processed.Text,
	}, nil
}

// ProcessContent is the string-tagged entry point: it resolves the operation
// tag and returns the extracted text.
func (a *Assistant) ProcessContent(ctx context.Context, content, operation string) (string, error) {
	if content == "" {
		return "", newError(KindInvalidRequest, "content is required")
	}
	op, err := ParseOperation(operation)
	if err != nil {
		return "", err
	}
	res, err := a.Process(ctx, Request{Content: content, Operation: op})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// normalize maps any pipeline error onto a single *Error.
// A done caller context turns transport-level failures into cancellations.
func (a *Assistant) normalize(ctx context.Context, err error) *Error {
	var e *Error
	ours := errors.As(err, &e)

	if ctxErr := ctx.Err(); ctxErr != nil && (!ours || e.Kind == KindTransport) {
		return wrapError(KindCancelled, "request cancelled", ctxErr)
	}
	if ours {
		return e
	}
	cause := a.provider.redact.error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindTransport, "request timed out", cause)
	}
	return wrapError(KindTransport, "request failed", cause)
}

// newTerminal creates the stage that performs the provider round trip.
func newTerminal(p *provider) pipz.Chainable[*Exchange] {
	return pipz.Apply("provider-call", func(ctx context.Context, ex *Exchange) (_ *Exchange, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = newError(KindTransport, fmt.Sprintf("transport panicked: %v", r))
			}
		}()
		raw, err := p.send(ctx, ex)
		if err != nil {
			return ex, err
		}
		ex.Raw = raw
		return ex, nil
	})
}

func validateStage() pipz.Chainable[*Exchange] {
	return pipz.Apply("validate", func(_ context.Context, ex *Exchange) (*Exchange, error) {
		if err := validateRequest(ex.Request); err != nil {
			return ex, err
		}
		return ex, nil
	})
}

func promptStage() pipz.Chainable[*Exchange] {
	return pipz.Apply("build-prompt", func(_ context.Context, ex *Exchange) (*Exchange, error) {
		prompt, err := BuildPrompt(ex.Request)
		if err != nil {
			return ex, err
		}
		ex.Prompt = prompt
		return ex, nil
	})
}

func encodeStage() pipz.Chainable[*Exchange] {
	return pipz.Apply("encode-envelope", func(_ context.Context, ex *Exchange) (*Exchange, error) {
		body, err := json.Marshal(newGenerateContentRequest(ex.Prompt))
		if err != nil {
			return ex, wrapError(KindInvalidRequest, "failed to encode request", err)
		}
		ex.Body = body
		return ex, nil
	})
}

func extractStage() pipz.Chainable[*Exchange] {
	return pipz.Apply("extract", func(ctx context.Context, ex *Exchange) (*Exchange, error) {
		text, err := Extract(ex.Raw)
		if err != nil {
			signal := ResponseParseFailed
			if KindOf(err) == KindNoContent {
				signal = ResponseEmpty
			}
			capitan.Error(ctx, signal,
				RequestIDKey.Field(ex.RequestID),
				OperationKey.Field(ex.Request.Operation.String()),
				FinishReasonKey.Field(finishReason(ex.Raw)),
				ErrorKey.Field(err.Error()),
			)
			return ex, err
		}
		ex.Text = text
		return ex, nil
	})
}
