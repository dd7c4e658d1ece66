// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
	"strconv"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// nestedCodec handles a sub-record referenced by name
type nestedCodec struct {
	schema *Schema
}

var _ Descriptor = &nestedCodec{}

// NewNested returns a descriptor for a sub-record of schema s
func NewNested(s *Schema) Descriptor {
	if s == nil {
		return invalid("nested field without a schema")
	}
	return &nestedCodec{schema: s}
}

func (c *nestedCodec) String() string {
	return c.schema.name
}

func (c *nestedCodec) refs() []string { return nil }
func (c *nestedCodec) minSize() int   { return c.schema.min }

func (c *nestedCodec) decode(d *decoder, ctx *Context) (Value, error) {
	r, err := d.decodeRecord(c.schema)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *nestedCodec) encode(e *encoder, v Value, ctx *Context) error {
	r, err := recordOf(c.schema, v)
	if err != nil {
		return err
	}
	return e.encodeRecord(r)
}

func (c *nestedCodec) construct(v interface{}, ctx *Context) (Value, error) {
	r, err := buildRecord(c.schema, v)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// repeatedCodec handles a sequence of sub-records whose length is held in
// an earlier integer field
type repeatedCodec struct {
	ref    string
	schema *Schema
}

var _ Descriptor = &repeatedCodec{}

// NewRepeated returns a descriptor for a sequence of sub-records of
// schema s, as many as the value of the integer field named ref
func NewRepeated(ref string, s *Schema) Descriptor {
	switch {
	case ref == "":
		return invalid("repeated field without a count field")
	case s == nil:
		return invalid("repeated field without a schema")
	case s.min == 0:
		return invalid("repeated schema '%s' may occupy zero bytes", s.name)
	}
	return &repeatedCodec{ref: ref, schema: s}
}

func (c *repeatedCodec) String() string {
	return fmt.Sprintf("%s[%s]", c.schema.name, c.ref)
}

func (c *repeatedCodec) refs() []string { return []string{c.ref} }
func (c *repeatedCodec) minSize() int   { return 0 }

func (c *repeatedCodec) decode(d *decoder, ctx *Context) (Value, error) {
	n, _, err := sizedRef(ctx, c.ref)
	if err != nil {
		return nil, err
	}

	// Refuse counts which could not possibly fit before looping over them
	if remaining := len(d.buf) - d.off; n > remaining/c.schema.min {
		need := maxInt
		if n <= maxInt/c.schema.min {
			need = n * c.schema.min
		}
		return nil, errors.BoundsError{Offset: d.off, Need: need, Have: len(d.buf)}
	}

	rs := make([]*Record, n)
	for i := range rs {
		rs[i], err = d.decodeRecord(c.schema)
		if err != nil {
			return nil, errors.WithFieldError(err, index(i))
		}
	}
	return rs, nil
}

func (c *repeatedCodec) encode(e *encoder, v Value, ctx *Context) error {
	rs, ok := v.([]*Record)
	if !ok {
		return errors.ValueTypeError{Value: v, Want: "[]*Record"}
	}
	if err := c.checkCount(len(rs), ctx); err != nil {
		return err
	}

	for i, r := range rs {
		if _, err := recordOf(c.schema, r); err != nil {
			return errors.WithFieldError(err, index(i))
		}
		if err := e.encodeRecord(r); err != nil {
			return errors.WithFieldError(err, index(i))
		}
	}
	return nil
}

func (c *repeatedCodec) construct(v interface{}, ctx *Context) (Value, error) {
	var items []interface{}
	switch v := v.(type) {
	case []*Record:
		items = make([]interface{}, len(v))
		for i, r := range v {
			items[i] = r
		}
	case []Values:
		items = make([]interface{}, len(v))
		for i, m := range v {
			items[i] = m
		}
	case []interface{}:
		items = v
	default:
		return nil, errors.ValueTypeError{Value: v, Want: "[]*Record"}
	}

	if err := c.checkCount(len(items), ctx); err != nil {
		return nil, err
	}

	rs := make([]*Record, len(items))
	for i, item := range items {
		r, err := buildRecord(c.schema, item)
		if err != nil {
			return nil, errors.WithFieldError(err, index(i))
		}
		rs[i] = r
	}
	return rs, nil
}

func (c *repeatedCodec) checkCount(l int, ctx *Context) error {
	n, declared, err := sizedRef(ctx, c.ref)
	switch {
	case err != nil:
		return err
	case l != n:
		return errors.ConsistencyError{Ref: c.ref, Actual: l, Declared: declared}
	}
	return nil
}

// recordOf returns v as a record of schema s
func recordOf(s *Schema, v Value) (*Record, error) {
	r, ok := v.(*Record)
	switch {
	case !ok:
		return nil, errors.ValueTypeError{Value: v, Want: "*Record"}
	case r == nil || r.schema != s:
		return nil, schemaMismatch(s, r)
	}
	return r, nil
}

// buildRecord accepts either an existing record of s, or the values from
// which to construct one
func buildRecord(s *Schema, v interface{}) (*Record, error) {
	switch v := v.(type) {
	case *Record:
		return recordOf(s, v)
	case Values:
		return construct(s, v)
	default:
		return nil, errors.ValueTypeError{Value: v, Want: "*Record or Values"}
	}
}

func schemaMismatch(want *Schema, r *Record) error {
	if r == nil {
		return formatErrorf("nil record where %s expected", want.name)
	}
	return formatErrorf("record of %s where %s expected", r.schema.name, want.name)
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
