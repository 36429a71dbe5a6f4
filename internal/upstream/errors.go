// Package upstream classifies failures of calls to external services: the
// reasoning backends and the job-listing providers.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type Kind int

const (
	Timeout Kind = iota + 1
	RateLimited
	Blocked
	Status
	Network
	Empty
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case RateLimited:
		return "rate_limited"
	case Blocked:
		return "blocked"
	case Status:
		return "status"
	case Network:
		return "network"
	case Empty:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Sentinel values for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrTimeout     = errors.New("upstream timeout")
	ErrRateLimited = errors.New("upstream rate limited")
	ErrBlocked     = errors.New("upstream blocked")
	ErrStatus      = errors.New("upstream status error")
	ErrNetwork     = errors.New("upstream network error")
	ErrEmpty       = errors.New("upstream empty result")
)

// Error is a failed call to a named upstream.
type Error struct {
	Kind       Kind
	Source     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == Timeout
	case ErrRateLimited:
		return e.Kind == RateLimited
	case ErrBlocked:
		return e.Kind == Blocked
	case ErrStatus:
		return e.Kind == Status
	case ErrNetwork:
		return e.Kind == Network
	case ErrEmpty:
		return e.Kind == Empty
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}

// FromStatus maps a non-success HTTP status to an *Error. 429 is RateLimited,
// everything else is Status. Callers that treat 403 as blocking check for it
// before calling.
func FromStatus(source string, code int) *Error {
	kind := Status
	if code == 429 {
		kind = RateLimited
	}
	return &Error{Kind: kind, Source: source, StatusCode: code}
}

// FromTransport classifies an error returned by http.Client.Do.
func FromTransport(source string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return New(Timeout, source, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return New(Timeout, source, err)
	}
	return New(Network, source, err)
}

// KindOf returns the Kind of err, or 0 when err is not an upstream error.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return 0
}
