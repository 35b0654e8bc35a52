package bpe

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by Error.Err for callers that want errors.Is.
var (
	errEmptyPattern = errors.New("pattern must not be empty")
	errIDNotFound   = errors.New("id not found")
)

// Kind tags every error bpe surfaces with the operation category it came
// from, per the fixed taxonomy every fallible operation must pick from.
type Kind string

const (
	Encoding        Kind = "encoding"
	Decoding        Kind = "decoding"
	Training        Kind = "training"
	ModelLoad       Kind = "model_load"
	ModelSave       Kind = "model_save"
	Vocab           Kind = "vocab"
	InputValidation Kind = "input_validation"
	Initialization  Kind = "initialization"
	InvalidRegex    Kind = "invalid_regex"
	InvalidIterator Kind = "invalid_iterator"
	InvalidInput    Kind = "invalid_input"
	Io              Kind = "io"
	Serialization   Kind = "serialization"
)

// Error is the single error type every fallible bpe operation returns,
// generalizing the teacher's DataError/TokenError/ConfigError triad into
// one kind-tagged type.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bpe: %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("bpe: %s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newErrf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}
