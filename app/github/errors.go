package github

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTimeout    ErrorKind = "timeout"
	KindHTTP       ErrorKind = "http"
	KindShape      ErrorKind = "shape"
)

// FetchError is the only error type returned by Client. Status is set for KindHTTP
// responses and is zero for transport failures.
type FetchError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTP && e.Status != 0:
		return fmt.Sprintf("%s: GitHub API error: %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) ErrorKind() string {
	return string(e.Kind)
}

// Timeout reports whether the request was cut off by its deadline or cancelled.
func (e *FetchError) Timeout() bool {
	return e.Kind == KindTimeout
}

// KindOf returns the kind of the first FetchError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsRetryable reports whether retrying the same request could succeed. Validation
// failures are caller misconfiguration and never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) != KindValidation
}

func newError(kind ErrorKind, op string, err error) *FetchError {
	return &FetchError{Kind: kind, Op: op, Err: err}
}

func transportError(op string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindTimeout, op, err)
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return newError(KindTimeout, op, err)
	}
	return newError(KindHTTP, op, err)
}
