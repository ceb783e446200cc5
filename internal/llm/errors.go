package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is not JSON or does not match the
// schema it was asked for. Schema is the schema name, empty when the
// reply had no usable content at all.
type ErrInvalidResponse struct {
	Schema  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("unusable model reply: %v", e.Err)
	}
	return fmt.Sprintf("model reply does not match %s: %v", e.Schema, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and 5xx responses.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a reply cut off at the token limit. Curricula
// are long documents and hit this first; Limit is the MaxTokens that was
// sent so a retry can ask for more.
type ErrMaxTokensExceeded struct {
	Schema  string
	Limit   int
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	what := "reply"
	if e.Schema != "" {
		what = e.Schema
	}
	return fmt.Sprintf("%s truncated at %d tokens (%d bytes received)", what, e.Limit, len(e.Content))
}

// failure sorts errors by what a retry can do about them.
type failure int

const (
	failFatal     failure = iota // context ended or unknown to retry
	failTransient                // rate limit, outage, network
	failInvalid                  // model produced the wrong shape
	failTruncated                // model ran out of tokens
)

func classify(err error) failure {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return failFatal
	}
	var (
		trunc   *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &trunc):
		return failTruncated
	case errors.As(err, &invalid):
		return failInvalid
	}
	return failTransient
}
