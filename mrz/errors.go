package mrz

import (
	"errors"
	"fmt"
)

// ErrorKind tells the two decode failures apart.
type ErrorKind int

const (
	WrongLength ErrorKind = iota + 1
	InvalidDate
)

func (k ErrorKind) String() string {
	switch k {
	case WrongLength:
		return "wrong_length"
	case InvalidDate:
		return "invalid_date"
	default:
		return "unknown"
	}
}

// Field names a date field of the line.
type Field string

const (
	FieldDateOfBirth    Field = "date_of_birth"
	FieldExpirationDate Field = "expiration_date"
)

// Sentinels for errors.Is; a *FormatError matches the one for its Kind.
var (
	ErrWrongLength = errors.New("invalid length")
	ErrInvalidDate = errors.New("invalid date")
)

// FormatError is returned by Decode when the line cannot be turned into a Record.
type FormatError struct {
	Kind ErrorKind
	// Field is only set for InvalidDate.
	Field Field
	// Value is the offending input: the whole line or the date substring.
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case WrongLength:
		return fmt.Sprintf("%s: MRZ line 2 must be exactly %d characters, got %d", ErrWrongLength, LineLength, len(e.Value))
	case InvalidDate:
		return fmt.Sprintf("%s in %s field: %q", ErrInvalidDate, e.Field, e.Value)
	default:
		return "malformed MRZ line"
	}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	switch target {
	case ErrWrongLength:
		return e.Kind == WrongLength
	case ErrInvalidDate:
		return e.Kind == InvalidDate
	}
	return false
}
