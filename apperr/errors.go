// Package apperr defines the error taxonomy shared by the catalog client,
// the search pipeline and the playback controller.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind categorizes a failure for user-facing messaging.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAPI
	KindDecode
	KindPlayback
	KindEmptyResult
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	case KindPlayback:
		return "playback"
	case KindEmptyResult:
		return "empty"
	default:
		return "unknown"
	}
}

// ErrNoStream is returned when a track has no playable stream candidate.
var ErrNoStream = errors.New("no playable stream")

// ErrEmptyResult marks a successful query that matched nothing.
var ErrEmptyResult = &Error{Kind: KindEmptyResult, Op: "query"}

// Error is a categorized failure. Code carries the HTTP status for KindAPI;
// zero means the catalog answered 2xx but reported success=false.
type Error struct {
	Kind Kind
	Op   string
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindAPI && e.Code != 0:
		return fmt.Sprintf("%s: %s error (status %d)", e.Op, e.Kind, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Network wraps a connectivity or timeout failure.
func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// API records a non-2xx response, or a catalog-reported failure when code is 0.
func API(op string, code int) error {
	return &Error{Kind: KindAPI, Op: op, Code: code}
}

// Decode wraps a malformed response body.
func Decode(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

// Playback wraps a stream resolution or transport failure.
func Playback(op string, err error) error {
	return &Error{Kind: KindPlayback, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusCode returns the HTTP status carried by an API error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindAPI {
		return e.Code
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the catalog.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsEmpty reports whether err only signals an empty result set.
func IsEmpty(err error) bool {
	return KindOf(err) == KindEmptyResult
}

// Retryable reports whether repeating the same request may succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork:
		return true
	case KindAPI:
		code := StatusCode(err)
		return code == http.StatusRequestTimeout ||
			code == http.StatusTooManyRequests ||
			code >= http.StatusInternalServerError
	default:
		return false
	}
}
