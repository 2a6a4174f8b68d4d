// Package apperr defines the failure kinds a pipeline request can end with.
// Every stage wraps its errors in *Error so callers can map the kind without
// inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindIO             Kind = "io_error"
	KindDecode         Kind = "decode_error"
	KindModelInference Kind = "model_inference_error"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrIO             = errors.New("audio file unreadable")
	ErrDecode         = errors.New("audio not decodable")
	ErrModelInference = errors.New("model inference failed")
)

// Error is a failure with its kind, the operation that raised it, and the cause.
type Error struct {
	Kind Kind
	Op   string // e.g. "audio.load", "transcribe.decode"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrModelInference:
		return e.Kind == KindModelInference
	}
	return false
}

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IO wraps err as an IOError.
func IO(op string, err error) *Error { return New(KindIO, op, err) }

// Decode wraps err as a DecodeError.
func Decode(op string, err error) *Error { return New(KindDecode, op, err) }

// Inference wraps err as a ModelInferenceError.
func Inference(op string, err error) *Error { return New(KindModelInference, op, err) }

// Inferencef formats a ModelInferenceError.
func Inferencef(op, format string, args ...any) *Error {
	return New(KindModelInference, op, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
