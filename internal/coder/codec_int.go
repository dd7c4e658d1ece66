// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"math"
	"strconv"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// intCodec handles integers of 1 to 8 bytes. Signed values are two's
// complement.
type intCodec struct {
	width  int
	signed bool
	little bool
}

var _ Descriptor = &intCodec{}

// NewInt returns a big-endian integer descriptor
func NewInt(width int, signed bool) Descriptor {
	return newInt(width, signed, false)
}

// NewIntLE returns a little-endian integer descriptor
func NewIntLE(width int, signed bool) Descriptor {
	return newInt(width, signed, true)
}

func newInt(width int, signed, little bool) Descriptor {
	if width < 1 || width > 8 {
		return invalid("integer width %d not in 1..8", width)
	}
	return &intCodec{width: width, signed: signed, little: little}
}

func (c *intCodec) String() string {
	s := "uint"
	if c.signed {
		s = "int"
	}
	s += strconv.Itoa(c.width * 8)
	if c.little && c.width > 1 {
		s += "le"
	}
	return s
}

func (c *intCodec) refs() []string { return nil }
func (c *intCodec) minSize() int   { return c.width }

func (c *intCodec) load(b []byte) uint64 {
	// Compiler bounds check hint
	_ = b[c.width-1]

	var u uint64
	if c.little {
		for i := c.width - 1; i >= 0; i-- {
			u = u<<8 | uint64(b[i])
		}
	} else {
		for i := 0; i < c.width; i++ {
			u = u<<8 | uint64(b[i])
		}
	}
	return u
}

func (c *intCodec) store(b []byte, u uint64) {
	_ = b[c.width-1]

	if c.little {
		for i := 0; i < c.width; i++ {
			b[i] = byte(u)
			u >>= 8
		}
	} else {
		for i := c.width - 1; i >= 0; i-- {
			b[i] = byte(u)
			u >>= 8
		}
	}
}

func (c *intCodec) decode(d *decoder, ctx *Context) (Value, error) {
	b, err := d.take(c.width)
	if err != nil {
		return nil, err
	}

	u := c.load(b)
	if !c.signed {
		return u, nil
	}

	// Sign extend from the top bit of the field
	shift := uint(64 - 8*c.width)
	return int64(u<<shift) >> shift, nil
}

func (c *intCodec) encode(e *encoder, v Value, ctx *Context) error {
	val, err := c.fit(v)
	if err != nil {
		return err
	}

	var u uint64
	switch val := val.(type) {
	case int64:
		u = uint64(val)
	case uint64:
		u = val
	}

	c.store(e.scratch[:c.width], u)
	_, err = e.b.Write(e.scratch[:c.width])
	return err
}

func (c *intCodec) construct(v interface{}, ctx *Context) (Value, error) {
	return c.fit(v)
}

// fit converts any Go integer into this field's canonical value
// (int64 if signed, uint64 if not), verifying that it is representable
func (c *intCodec) fit(v interface{}) (Value, error) {
	x, negative, ok := asInteger(v)
	if !ok {
		return nil, errors.ValueTypeError{Value: v, Want: "integer"}
	}

	bits := uint(8 * c.width)
	if c.signed {
		i := int64(x)
		lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
		if bits < 64 {
			lo, hi = -1<<(bits-1), 1<<(bits-1)-1
		}
		if (!negative && x > math.MaxInt64) || i < lo || i > hi {
			return nil, c.rangeError(x, negative)
		}
		return i, nil
	}

	if negative || (bits < 64 && x >= 1<<bits) {
		return nil, c.rangeError(x, negative)
	}
	return x, nil
}

func (c *intCodec) rangeError(x uint64, negative bool) error {
	v := strconv.FormatUint(x, 10)
	if negative {
		v = strconv.FormatInt(int64(x), 10)
	}
	return errors.RangeError{Value: v, Width: c.width, Signed: c.signed}
}

// asInteger converts any Go integer type into its 64-bit two's
// complement bit pattern, and whether it is negative
func asInteger(v interface{}) (x uint64, negative bool, ok bool) {
	var i int64
	switch v := v.(type) {
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint:
		return uint64(v), false, true
	case uint8:
		return uint64(v), false, true
	case uint16:
		return uint64(v), false, true
	case uint32:
		return uint64(v), false, true
	case uint64:
		return v, false, true
	case uintptr:
		return uint64(v), false, true
	default:
		return 0, false, false
	}
	return uint64(i), i < 0, true
}

// equalValues compares two values the way branch predicates do:
// integers numerically regardless of Go type, byte blocks by content
func equalValues(a, b interface{}) bool {
	if ax, aneg, ok := asInteger(a); ok {
		bx, bneg, ok := asInteger(b)
		return ok && ax == bx && aneg == bneg
	}

	ab, ok := asBytes(a)
	if !ok {
		return false
	}
	bb, ok := asBytes(b)
	return ok && string(ab) == string(bb)
}

func asBytes(v interface{}) ([]byte, bool) {
	switch v := v.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
