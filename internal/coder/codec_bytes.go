// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"
	"fmt"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// fixedBytesCodec handles byte blocks whose length is held in an earlier
// integer field
type fixedBytesCodec struct {
	ref string
}

var _ Descriptor = &fixedBytesCodec{}

// NewFixedBytes returns a descriptor for a byte block whose length is
// the value of the integer field named ref
func NewFixedBytes(ref string) Descriptor {
	if ref == "" {
		return invalid("fixed length bytes without a length field")
	}
	return &fixedBytesCodec{ref: ref}
}

func (c *fixedBytesCodec) String() string {
	return fmt.Sprintf("bytes[%s]", c.ref)
}

func (c *fixedBytesCodec) refs() []string { return []string{c.ref} }
func (c *fixedBytesCodec) minSize() int   { return 0 }

func (c *fixedBytesCodec) decode(d *decoder, ctx *Context) (Value, error) {
	n, _, err := sizedRef(ctx, c.ref)
	if err != nil {
		return nil, err
	}

	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, n), b...), nil
}

func (c *fixedBytesCodec) encode(e *encoder, v Value, ctx *Context) error {
	b, err := c.check(v, ctx)
	if err != nil {
		return err
	}
	_, err = e.b.Write(b)
	return err
}

func (c *fixedBytesCodec) construct(v interface{}, ctx *Context) (Value, error) {
	b, err := c.check(v, ctx)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, len(b)), b...), nil
}

func (c *fixedBytesCodec) check(v interface{}, ctx *Context) ([]byte, error) {
	b, ok := asBytes(v)
	if !ok {
		return nil, errors.ValueTypeError{Value: v, Want: "[]byte"}
	}

	n, declared, err := sizedRef(ctx, c.ref)
	switch {
	case err != nil:
		return nil, err
	case len(b) != n:
		return nil, errors.ConsistencyError{Ref: c.ref, Actual: len(b), Declared: declared}
	}
	return b, nil
}

// terminatedCodec handles byte blocks which run up to and including the
// first occurrence of a terminator. The terminator is part of the value.
type terminatedCodec struct {
	term []byte
}

var _ Descriptor = &terminatedCodec{}

// NewTerminated returns a descriptor for a terminator delimited byte block
func NewTerminated(term []byte) Descriptor {
	if len(term) == 0 {
		return invalid("empty terminator")
	}
	return &terminatedCodec{term: append([]byte(nil), term...)}
}

func (c *terminatedCodec) String() string {
	return fmt.Sprintf("bytes[..%x]", c.term)
}

func (c *terminatedCodec) refs() []string { return nil }
func (c *terminatedCodec) minSize() int   { return len(c.term) }

func (c *terminatedCodec) decode(d *decoder, ctx *Context) (Value, error) {
	b, err := d.scan(c.term)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, len(b)), b...), nil
}

func (c *terminatedCodec) encode(e *encoder, v Value, ctx *Context) error {
	b, err := c.check(v)
	if err != nil {
		return err
	}
	_, err = e.b.Write(b)
	return err
}

func (c *terminatedCodec) construct(v interface{}, ctx *Context) (Value, error) {
	b, err := c.check(v)
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, len(b)), b...), nil
}

// check verifies that the first occurrence of the terminator in v is at
// its very end; anything else would decode differently
func (c *terminatedCodec) check(v interface{}) ([]byte, error) {
	b, ok := asBytes(v)
	if !ok {
		return nil, errors.ValueTypeError{Value: v, Want: "[]byte"}
	}

	switch i := bytes.Index(b, c.term); {
	case i < 0:
		return nil, formatErrorf("value does not end with terminator %x", c.term)
	case i != len(b)-len(c.term):
		return nil, formatErrorf("terminator %x occurs at %d, before the end of the value", c.term, i)
	}
	return b, nil
}
