package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// FailureKind groups provider errors into the categories the scheduler
// reacts to with different pauses before picking up the next task.
type FailureKind string

const (
	FailureRateLimited FailureKind = "rate_limited"
	FailureTransient   FailureKind = "transient"
	FailureOther       FailureKind = "other"
)

// ErrNoKeywords indicates the provider answered but nothing usable survived
// parsing and validation.
var ErrNoKeywords = errors.New("no valid keywords in response")

// RateLimitError wraps an HTTP 429 style rejection from a provider.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// TransientError wraps timeouts, connection resets and 5xx responses that are
// worth retrying on the same provider before giving the task away.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Classify maps an extraction error to its failure kind. Unrecognized errors,
// including parse rejections, fall into FailureOther.
func Classify(err error) FailureKind {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return FailureRateLimited
	}
	var tr *TransientError
	if errors.As(err, &tr) {
		return FailureTransient
	}
	return FailureOther
}

// classifyProviderErr converts raw transport and API errors into the typed
// taxonomy. Errors it does not recognize pass through unchanged.
func classifyProviderErr(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &RateLimitError{Provider: provider, Err: err}
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return &TransientError{Provider: provider, Err: err}
		}
		return fmt.Errorf("%s: %w", provider, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &RateLimitError{Provider: provider, Err: err}
		case reqErr.HTTPStatusCode >= http.StatusInternalServerError:
			return &TransientError{Provider: provider, Err: err}
		}
		return fmt.Errorf("%s: %w", provider, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Provider: provider, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransientError{Provider: provider, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransientError{Provider: provider, Err: err}
	}

	return fmt.Errorf("%s: %w", provider, err)
}
