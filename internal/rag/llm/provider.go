package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Provider generates an answer for a fully composed grounding prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoAnswer means the model call succeeded but produced no usable
// text.
var ErrNoAnswer = errors.New("model returned no usable answer")

// BlockedError is returned when the provider's safety filter refused
// the request or the response. Terminal: retrying the same content is
// pointless.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("content blocked by safety filter: %s", e.Reason)
}

// IsTransient reports whether a provider failure is worth retrying.
// Rate limits, timeouts and transient server errors are; permission,
// invalid-argument and safety blocks are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return false
	}
	if errors.Is(err, ErrNoAnswer) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 503, 504:
			return true
		}
		return false
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
			return true
		}
	}
	return false
}
