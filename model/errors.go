package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain matches any DomainError via errors.Is.
	ErrDomain = errors.New("domain error")
	// ErrInvalidInput matches any InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError reports an input that violates a mathematical precondition,
// such as a negative radicand or a zero denominator.
type DomainError struct {
	Op    string
	Field string
	Index int // instrument index, -1 when the error is not row specific
	Value float64
	Msg   string
}

func (e *DomainError) Error() string {
	return format(e.Op, e.Field, e.Index, e.Value, e.Msg)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// InvalidInputError reports a precondition violation detected before any
// computation starts.
type InvalidInputError struct {
	Op    string
	Field string
	Index int
	Value float64
	Msg   string
}

func (e *InvalidInputError) Error() string {
	return format(e.Op, e.Field, e.Index, e.Value, e.Msg)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// NewDomainError builds a DomainError that is not tied to an instrument row.
func NewDomainError(op, field string, value float64, msg string) *DomainError {
	return &DomainError{Op: op, Field: field, Index: -1, Value: value, Msg: msg}
}

// NewInvalidInputError builds an InvalidInputError that is not tied to an instrument row.
func NewInvalidInputError(op, field string, value float64, msg string) *InvalidInputError {
	return &InvalidInputError{Op: op, Field: field, Index: -1, Value: value, Msg: msg}
}

func format(op, field string, index int, value float64, msg string) string {
	if index >= 0 {
		return fmt.Sprintf("%s: instrument %d: %s=%v: %s", op, index, field, value, msg)
	}
	if field == "" {
		return fmt.Sprintf("%s: %s", op, msg)
	}
	return fmt.Sprintf("%s: %s=%v: %s", op, field, value, msg)
}
