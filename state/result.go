package state

import "github.com/yhkl-dev/SaavnCLI/apperr"

// Status is the lifecycle of an asynchronous load.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "loading"
	}
}

// Result is the Loading / Success / Failure projection a screen renders.
type Result[T any] struct {
	Status  Status
	Data    T
	Err     error
	Message string
}

func Loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{Status: StatusSuccess, Data: data}
}

// Failure records err along with its user-facing message.
func Failure[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailure, Err: err, Message: apperr.Message(err)}
}

// FailureMessage records an explicit message, for failures that are not
// errors from the catalog (e.g. an album with no songs).
func FailureMessage[T any](err error, message string) Result[T] {
	return Result[T]{Status: StatusFailure, Err: err, Message: message}
}
