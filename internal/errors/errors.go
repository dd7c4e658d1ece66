// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	"fmt"
	"strings"
)

type xerror string

func (e xerror) Error() string {
	return string(e)
}

const (
	// The buffer ended before the schema was satisfied
	ErrOutOfBounds = xerror("bytestory: Read past end of buffer")

	// No occurrence of a terminator before the end of the buffer
	ErrUnterminated = xerror("bytestory: Terminator not found")

	// Integer value not representable at the field's width and signedness
	ErrRange = xerror("bytestory: Integer out of range")

	// A byte block or sequence disagrees with the length or count field
	// which describes it
	ErrConsistency = xerror("bytestory: Length inconsistent with referenced field")

	// Malformed value: an undeclared branch candidate, or terminated bytes
	// which do not end with their terminator
	ErrFormat = xerror("bytestory: Invalid format")

	// Schema rejected at construction time
	ErrInvalidSchema = xerror("bytestory: Invalid schema")

	// Construct was not given a value for a field
	ErrFieldMissing = xerror("bytestory: Field value missing")

	// Construct was given a value which no field accepts
	ErrUnknownField = xerror("bytestory: Unknown field")

	// Construct was given a Go value of a kind the field cannot hold
	ErrValueType = xerror("bytestory: Value of wrong type for field")
)

// BoundsError reports a read of Need bytes at Offset from a buffer of
// length Have.
type BoundsError struct {
	Offset, Need, Have int
}

func (err BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

func (err BoundsError) Error() string {
	return fmt.Sprintf("%s (need %d bytes at offset %d, buffer is %d bytes)",
		ErrOutOfBounds, err.Need, err.Offset, err.Have)
}

// UnterminatedError reports a failed terminator scan starting at Offset.
type UnterminatedError struct {
	Offset     int
	Terminator []byte
}

func (err UnterminatedError) Is(target error) bool {
	return target == ErrUnterminated
}

func (err UnterminatedError) Error() string {
	return fmt.Sprintf("%s (%x after offset %d)", ErrUnterminated, err.Terminator, err.Offset)
}

// RangeError reports an integer which does not fit a field.
//
// Value is a formatted decimal so that both signed and unsigned
// values can be carried without loss.
type RangeError struct {
	Value  string
	Width  int
	Signed bool
}

func (err RangeError) Is(target error) bool {
	return target == ErrRange
}

func (err RangeError) Error() string {
	sign := "unsigned"
	if err.Signed {
		sign = "signed"
	}
	return fmt.Sprintf("%s (%s does not fit %d byte %s)", ErrRange, err.Value, err.Width, sign)
}

// ConsistencyError reports a byte block or sequence whose length
// (Actual) disagrees with the value of its reference field Ref
// (Declared).
type ConsistencyError struct {
	Ref      string
	Actual   int
	Declared interface{}
}

func (err ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

func (err ConsistencyError) Error() string {
	return fmt.Sprintf("%s (length %d, but %s is %v)", ErrConsistency, err.Actual, err.Ref, err.Declared)
}

// FormatError reports a malformed value
type FormatError struct {
	Reason string
}

func (err FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (err FormatError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrFormat, err.Reason)
}

// SchemaError reports why a schema was rejected
type SchemaError struct {
	Schema string
	Reason string
}

func (err SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

func (err SchemaError) Error() string {
	if err.Schema == "" {
		err.Schema = "<anonymous>"
	}
	return fmt.Sprintf("%s '%s': %s", ErrInvalidSchema, err.Schema, err.Reason)
}

// ValueTypeError reports a Go value handed to Construct which the
// field cannot hold
type ValueTypeError struct {
	Value interface{}
	Want  string
}

func (err ValueTypeError) Is(target error) bool {
	return target == ErrValueType
}

func (err ValueTypeError) Error() string {
	return fmt.Sprintf("%s (got %T, want %s)", ErrValueType, err.Value, err.Want)
}

type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "bytestory: ")
	return fmt.Sprintf("bytestory: %s (at %s)", uerr, err.Path)
}

// WithFieldError attaches the path component parts (joined with dots)
// to err. If err already carries a path, parts are prepended to it;
// components beginning with '[' or '(' are attached without a dot.
func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	if parts[0] == "" {
		parts[0] = "<anonymous>"
	}
	combined := joinPath(parts...)

	switch err := err.(type) {
	case FieldError:
		err.Path = joinPath(combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}

func joinPath(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() != 0 && p[0] != '[' && p[0] != '(' {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}
