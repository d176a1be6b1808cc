package sys

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a command's input is malformed: bad
// date/time format, out-of-range index, malformed milestone list, invalid
// time zone name, non-positive repeat interval. No state is mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, v ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, v...)}
}

// NotFoundError is returned when a referenced entity does not exist: unknown
// event channel, missing user link. No state is mutated.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFoundf(format string, v ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, v...)}
}

// UserMessage extracts the user-facing rejection text from a validation or
// not-found error. Anything else maps to a generic save failure, which is the
// only other error class a command mutator can surface.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Msg
	}
	return ErrCmdSaveFailed
}
