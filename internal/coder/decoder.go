// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// decoder is a read cursor over a buffer. The buffer is never modified.
type decoder struct {
	buf []byte
	off int
}

// take consumes exactly n bytes
func (d *decoder) take(n int) ([]byte, error) {
	if n > len(d.buf)-d.off {
		return nil, errors.BoundsError{Offset: d.off, Need: n, Have: len(d.buf)}
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// scan consumes up to and including the first occurrence of term
func (d *decoder) scan(term []byte) ([]byte, error) {
	i := bytes.Index(d.buf[d.off:], term)
	if i < 0 {
		return nil, errors.UnterminatedError{Offset: d.off, Terminator: term}
	}
	return d.take(i + len(term))
}

func (d *decoder) decodeRecord(s *Schema) (*Record, error) {
	r := &Record{
		schema: s,
		values: make([]Value, len(s.fields)),
	}

	ctx := newContext(s, r.values)
	for _, f := range s.fields {
		v, err := f.desc.decode(d, &ctx)
		if err != nil {
			return nil, errors.WithFieldError(err, f.name)
		}
		ctx.set(v)
	}

	if s.branch == nil {
		return r, nil
	}

	i, c, err := s.branch.choose(&ctx)
	if err != nil {
		return nil, errors.WithFieldError(err, branchPath(s, nil))
	}

	sub, err := d.decodeRecord(c)
	if err != nil {
		return nil, errors.WithFieldError(err, branchPath(s, c))
	}

	r.variant = &Variant{
		Index:  i,
		Schema: c,
		Record: sub,
		Slot:   s.slot,
	}
	return r, nil
}

// branchPath names the variant c of s's branch point in error paths:
// "slot(Variant)" for named slots, "(Variant)" for extensions
func branchPath(s *Schema, c *Schema) string {
	name := "?"
	if c != nil {
		name = c.name
	}
	return s.slot + "(" + name + ")"
}

// Decode decodes a record of schema s from buf, starting at offset.
// It returns the record and the offset of the first byte after it.
func Decode(s *Schema, buf []byte, offset int) (*Record, int, error) {
	if offset < 0 || offset > len(buf) {
		return nil, offset, errors.BoundsError{Offset: offset, Have: len(buf)}
	}

	d := decoder{buf: buf, off: offset}
	r, err := d.decodeRecord(s)
	if err != nil {
		return nil, offset, errors.WithFieldError(err, s.name)
	}
	return r, d.off, nil
}

// DecodeAll decodes consecutive records of schema s until buf is
// exhausted
func DecodeAll(s *Schema, buf []byte) ([]*Record, error) {
	var rs []*Record
	for off := 0; off < len(buf); {
		r, end, err := Decode(s, buf, off)
		if err != nil {
			return nil, errors.WithFieldError(err, index(len(rs)))
		}
		if end == off {
			return nil, errors.SchemaError{Schema: s.name, Reason: "record consumed no bytes"}
		}
		rs = append(rs, r)
		off = end
	}
	return rs, nil
}
