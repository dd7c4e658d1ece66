// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bytestory

import (
	"github.com/no1xsyzy/bytestory/internal/coder"
	"github.com/no1xsyzy/bytestory/internal/errors"
)

const (
	// The buffer ended before the schema was satisfied
	ErrOutOfBounds = errors.ErrOutOfBounds
	// A terminator was not found before the end of the buffer
	ErrUnterminated = errors.ErrUnterminated
	// An integer does not fit its field
	ErrRange = errors.ErrRange
	// A byte block or sequence disagrees with its length or count field
	ErrConsistency = errors.ErrConsistency
	// An undeclared or mismatched branch variant, or terminated bytes
	// lacking their terminator
	ErrFormat = errors.ErrFormat
	// The schema was rejected when built
	ErrInvalidSchema = errors.ErrInvalidSchema
	// Construct was not given a value for a field
	ErrFieldMissing = errors.ErrFieldMissing
	// Construct was given a value for a field which does not exist
	ErrUnknownField = errors.ErrUnknownField
	// Construct was given a value of the wrong type for its field
	ErrValueType = errors.ErrValueType
)

// NewSchema starts building a schema called name
func NewSchema(name string) *Builder {
	return coder.NewBuilder(name)
}

// Decode decodes a record of schema s from buf starting at offset. It
// returns the record and the offset of the first byte after it.
func Decode(s *Schema, buf []byte, offset int) (*Record, int, error) {
	return coder.Decode(s, buf, offset)
}

// DecodeAll decodes consecutive records of schema s until buf is
// exhausted
func DecodeAll(s *Schema, buf []byte) ([]*Record, error) {
	return coder.DecodeAll(s, buf)
}

// Encode encodes r into a newly allocated buffer
func Encode(r *Record) ([]byte, error) {
	return coder.Encode(r)
}

// Construct builds a record of schema s from field values, without
// decoding anything. Values are checked as Encode would check them.
func Construct(s *Schema, values Values) (*Record, error) {
	return coder.Construct(s, values)
}

// Int is a big-endian integer of width (1 to 8) bytes
func Int(width int, signed bool) Descriptor {
	return coder.NewInt(width, signed)
}

// IntLE is a little-endian integer of width (1 to 8) bytes
func IntLE(width int, signed bool) Descriptor {
	return coder.NewIntLE(width, signed)
}

func Char() Descriptor      { return coder.NewInt(1, true) }
func UChar() Descriptor     { return coder.NewInt(1, false) }
func Short() Descriptor     { return coder.NewInt(2, true) }
func UShort() Descriptor    { return coder.NewInt(2, false) }
func Long() Descriptor      { return coder.NewInt(4, true) }
func ULong() Descriptor     { return coder.NewInt(4, false) }
func LongLong() Descriptor  { return coder.NewInt(8, true) }
func ULongLong() Descriptor { return coder.NewInt(8, false) }

// FixedBytes is a byte block whose length is held by the integer field ref
func FixedBytes(ref string) Descriptor {
	return coder.NewFixedBytes(ref)
}

// Terminated is a byte block running up to and including the first
// occurrence of term
func Terminated(term []byte) Descriptor {
	return coder.NewTerminated(term)
}

// Nested is a sub-record of schema s
func Nested(s *Schema) Descriptor {
	return coder.NewNested(s)
}

// Repeated is a sequence of sub-records of schema s, as many as the
// integer field ref holds
func Repeated(ref string, s *Schema) Descriptor {
	return coder.NewRepeated(ref, s)
}

// Choose is a branch point selecting one of candidates with r
func Choose(r Resolver, candidates ...*Schema) *Branch {
	return coder.Choose(r, candidates...)
}

// When is a branch point continuing with then if p holds, and with
// otherwise if not
func When(p Predicate, then, otherwise *Schema) *Branch {
	return coder.When(p, then, otherwise)
}

// FieldEquals holds when the named field equals v
func FieldEquals(name string, v interface{}) Predicate {
	return coder.FieldEquals(name, v)
}

// FieldsEqual holds when fields a and b are equal
func FieldsEqual(a, b string) Predicate {
	return coder.FieldsEqual(a, b)
}

// Not inverts p
func Not(p Predicate) Predicate {
	return coder.Not(p)
}

// Test wraps fn as a predicate; refs must name every field fn reads
func Test(fn func(ctx *Context) bool, refs ...string) Predicate {
	return coder.Test(fn, refs...)
}
