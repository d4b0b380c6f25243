package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Sentinel errors for LLM failure classification.
var (
	// ErrTimeout indicates the call exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRateLimited indicates the provider returned a 429.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrAuth indicates a credential problem (401/403).
	ErrAuth = errors.New("llm authentication failed")

	// ErrUnavailable indicates the endpoint could not be reached or
	// returned a server-side error.
	ErrUnavailable = errors.New("llm endpoint unavailable")
)

// ClassifyError wraps a raw transport or API error with the matching
// sentinel so callers can branch with errors.Is without depending on the
// provider SDK's error types.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case 500, 502, 503, 504:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return err
}
