package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit indicates the provider answered 429. RetryAfter is taken from
// the Retry-After header when the backend exposes it.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	name := e.Provider
	if name == "" {
		name = "LLM"
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s: %v", name, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s rate limit exceeded: %v", name, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model answered with content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider could not serve the request.
// Status is the HTTP status of the failed call, or 0 when the request never
// got an answer.
type ErrProviderUnavailable struct {
	Provider string
	Status   int
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	msg := "LLM provider unavailable"
	if e.Provider != "" {
		msg = e.Provider + " unavailable"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Permanent reports whether repeating the request cannot succeed: the
// provider rejected it outright (bad key, unknown model, malformed request).
func (e *ErrProviderUnavailable) Permanent() bool {
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return false
	case e.Status >= 400 && e.Status < 500:
		return true
	}
	return false
}

// ErrMaxTokensExceeded indicates a structured response was cut off by the
// MaxTokens limit before the JSON was complete.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// classify maps a failed backend call to the package's typed errors.
// header may be nil when the SDK does not expose the raw response.
func classify(provider string, status int, header http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: provider, RetryAfter: retryAfter(header), Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Status: status, Err: err}
}

// retryAfter reads a Retry-After header given either in seconds or as an
// HTTP date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
