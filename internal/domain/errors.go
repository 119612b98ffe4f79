package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyClaimed = errors.New("job already claimed")
	ErrNoJobAvailable = errors.New("no job available")
)

// RenderError indicates the job payload did not satisfy the prompt's input
// contract. It is a caller/contract mismatch and never retried.
type RenderError struct {
	Prompt string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render prompt %q: %v", e.Prompt, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ProviderError wraps a failure of the external model provider: timeouts,
// non-2xx responses, network errors. Always transient.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationReason classifies why a model response was rejected.
type ValidationReason string

const (
	// ReasonMalformed means the response did not parse as JSON (or was
	// empty). Plausibly transient model noise, retryable.
	ReasonMalformed ValidationReason = "malformed"
	// ReasonSchema means a hard structural rule was violated, e.g. a missing
	// required array. Not retryable.
	ReasonSchema ValidationReason = "schema"
	// ReasonContentPolicy means the response violated a content rule, e.g. a
	// placeholder exercise name or forbidden markdown. Retried once.
	ReasonContentPolicy ValidationReason = "content_policy"
)

// ValidationError is the rejection result of an output validator.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation %s: %s", e.Reason, e.Detail)
}
