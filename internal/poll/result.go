package poll

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

var (
	// ErrUnavailable marks a source that could not be reached or has nothing
	// to report yet. The loop backs off and retries.
	ErrUnavailable = errors.New("source unavailable")
	// ErrMalformed marks a response that arrived but could not be used.
	ErrMalformed = errors.New("malformed response")
)

type Status int

const (
	StatusOK Status = iota
	StatusRetry
	StatusSkip
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRetry:
		return "retry"
	case StatusSkip:
		return "skip"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func Retry[T any](err error) Result[T] {
	return Result[T]{Status: StatusRetry, Err: err}
}

func Skip[T any](err error) Result[T] {
	return Result[T]{Status: StatusSkip, Err: err}
}

func Fatal[T any](err error) Result[T] {
	return Result[T]{Status: StatusFatal, Err: err}
}

// FromError builds a Result from err using Classify.
func FromError[T any](err error) Result[T] {
	return Result[T]{Status: Classify(err), Err: err}
}

// Classify maps an error to the status the loop acts on: connection level
// failures retry, malformed payloads skip, everything else is fatal.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, ErrMalformed) {
		return StatusSkip
	}
	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return StatusRetry
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return StatusRetry
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return StatusRetry
	}
	return StatusFatal
}
