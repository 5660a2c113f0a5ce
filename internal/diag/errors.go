package diag

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad reports input that could not be parsed or finalized.
	ErrLoad = errors.New("load error")
	// ErrNotFound reports a missing module, symbol, reaction, event or ordinal.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported reports a format that is unknown or excluded from the build.
	ErrUnsupported = errors.New("unsupported")
	// ErrAllocation reports a result that could not be materialized.
	ErrAllocation = errors.New("allocation error")
)

// Error carries one of the sentinel kinds plus a human readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Loadf builds a load error.
func Loadf(format string, args ...any) *Error {
	return &Error{Kind: ErrLoad, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Unsupportedf builds an unsupported-format error.
func Unsupportedf(format string, args ...any) *Error {
	return &Error{Kind: ErrUnsupported, Msg: fmt.Sprintf(format, args...)}
}

// Allocationf builds an allocation error.
func Allocationf(format string, args ...any) *Error {
	return &Error{Kind: ErrAllocation, Msg: fmt.Sprintf(format, args...)}
}

// KindName returns a short label for the error kind, used as a metric label.
func KindName(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrLoad):
		return "load"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrAllocation):
		return "allocation"
	default:
		return "other"
	}
}
