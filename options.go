package research

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zoobzio/pipz"
)

// Option modifies the provider-call stage of the pipeline.
type Option func(pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange]

// WithTimeout bounds the provider round trip.
// A call exceeding this duration fails with ErrTransport.
func WithTimeout(duration time.Duration) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.NewTimeout("timeout", pipeline, duration)
	}
}

// WithErrorHandler adds error handling to the provider call.
// The handler receives the pipz error context and can log or alert; the
// original error is still returned to the caller.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*Exchange]]) Option {
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.NewHandle("error-handler", pipeline, handler)
	}
}

// WithDebug prints the rendered prompt and the raw response to w, or to
// stdout when w is nil. The request URL is never printed.
func WithDebug(w io.Writer) Option {
	if w == nil {
		w = os.Stdout
	}
	return func(pipeline pipz.Chainable[*Exchange]) pipz.Chainable[*Exchange] {
		return pipz.Apply("debug", func(ctx context.Context, ex *Exchange) (*Exchange, error) {
			fmt.Fprintln(w, "\n=== DEBUG: Prompt ===")
			fmt.Fprintln(w, ex.Prompt)
			fmt.Fprintln(w, "=====================")

			processed, err := pipeline.Process(ctx, ex)
			if err != nil {
				fmt.Fprintf(w, "\n=== DEBUG: Error ===\n%v\n==================\n\n", err)
				return processed, err
			}

			fmt.Fprintln(w, "\n=== DEBUG: Raw Response ===")
			fmt.Fprintln(w, string(processed.Raw))
			fmt.Fprintln(w, "===========================")

			return processed, nil
		})
	}
}
