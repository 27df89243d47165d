package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// endpoint appends the key query parameter to the configured base URL.
func endpoint(baseURL, apiKey string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "key=" + url.QueryEscape(apiKey)
}

// provider sends encoded envelopes to Gemini.
type provider struct {
	client   Doer
	baseURL  string
	apiKey   string
	maxBytes int64
	redact   redactor
}

func newProvider(cfg Config) *provider {
	return &provider{
		client:   cfg.Client,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		maxBytes: cfg.MaxResponseBytes,
		redact:   redactor{secret: cfg.APIKey},
	}
}

// send performs one POST and returns the raw 2xx body.
// The response body is read and closed before send returns.
func (p *provider) send(ctx context.Context, ex *Exchange) ([]byte, error) {
	startTime := time.Now()

	capitan.Info(ctx, ProviderCallStarted,
		RequestIDKey.Field(ex.RequestID),
		OperationKey.Field(ex.Request.Operation.String()),
		EndpointKey.Field(p.baseURL),
		PromptLengthKey.Field(len(ex.Prompt)),
	)

	if err := ctx.Err(); err != nil {
		return nil, p.fail(ctx, ex, startTime, 0, wrapError(KindCancelled, "request cancelled before send", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(p.baseURL, p.apiKey), bytes.NewReader(ex.Body))
	if err != nil {
		return nil, p.fail(ctx, ex, startTime, 0, wrapError(KindTransport, "failed to create request", p.redact.error(unwrapURLError(err))))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.fail(ctx, ex, startTime, 0, p.classify(ctx, err))
	}
	defer resp.Body.Close()
	ex.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, p.fail(ctx, ex, startTime, resp.StatusCode, p.classify(ctx, err))
	}
	if int64(len(body)) > p.maxBytes {
		return nil, p.fail(ctx, ex, startTime, resp.StatusCode,
			newError(KindTransport, fmt.Sprintf("response exceeds %d bytes", p.maxBytes)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, p.fail(ctx, ex, startTime, resp.StatusCode, p.statusError(resp.StatusCode, body))
	}

	capitan.Info(ctx, ProviderCallCompleted,
		RequestIDKey.Field(ex.RequestID),
		OperationKey.Field(ex.Request.Operation.String()),
		HTTPStatusCodeKey.Field(resp.StatusCode),
		DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
	)
	return body, nil
}

// classify turns a round-trip error into a cancelled or transport *Error.
func (p *provider) classify(ctx context.Context, err error) *Error {
	cause := p.redact.error(unwrapURLError(err))
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return wrapError(KindCancelled, "request cancelled", cause)
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return wrapError(KindTransport, "request timed out", cause)
	}
	return wrapError(KindTransport, "request failed", cause)
}

// statusError describes a non-2xx response. The provider's own error message
// is used when the body carries one; the body itself is never included.
func (p *provider) statusError(status int, body []byte) *Error {
	e := &Error{
		Kind:       KindTransport,
		StatusCode: status,
		Message:    fmt.Sprintf("gemini error: status %d", status),
	}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		if status == http.StatusTooManyRequests {
			e.Message = p.redact.string("rate limit exceeded: " + errResp.Error.Message)
			return e
		}
		e.Message = p.redact.string(fmt.Sprintf("gemini error (%d): %s", status, errResp.Error.Message))
	}
	return e
}

func (p *provider) fail(ctx context.Context, ex *Exchange, startTime time.Time, status int, e *Error) error {
	ex.StatusCode = status
	capitan.Error(ctx, ProviderCallFailed,
		RequestIDKey.Field(ex.RequestID),
		OperationKey.Field(ex.Request.Operation.String()),
		HTTPStatusCodeKey.Field(status),
		DurationMsKey.Field(int(time.Since(startTime).Milliseconds())),
		ErrorKindKey.Field(e.Kind.String()),
		ErrorKey.Field(e.Error()),
	)
	return e
}

// unwrapURLError drops the *url.Error wrapper, whose message embeds the
// request URL and therefore the key.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
