// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"
	"sync"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

var encoderPool = sync.Pool{
	New: func() interface{} {
		return new(encoder)
	},
}

type encoder struct {
	b bytes.Buffer

	// Small scratch buffer (avoids needing to ever allocate when writing integers)
	scratch [8]byte
}

func (e *encoder) encodeRecord(r *Record) error {
	s := r.schema
	ctx := newContext(s, r.values)
	for i, f := range s.fields {
		if err := f.desc.encode(e, r.values[i], &ctx); err != nil {
			return errors.WithFieldError(err, f.name)
		}
		ctx.n++
	}

	switch {
	case s.branch == nil:
		return nil
	case r.variant == nil:
		return errors.WithFieldError(formatErrorf("no variant chosen"), branchPath(s, nil))
	}

	// The stored variant must be the one the resolver selects, or the
	// output would not decode back to this record
	_, c, err := s.branch.choose(&ctx)
	switch {
	case err != nil:
		return errors.WithFieldError(err, branchPath(s, r.variant.Schema))
	case c != r.variant.Schema:
		err = formatErrorf("variant is %s, but the branch point selects %s", r.variant.Schema.name, c.name)
		return errors.WithFieldError(err, branchPath(s, r.variant.Schema))
	}

	if err := e.encodeRecord(r.variant.Record); err != nil {
		return errors.WithFieldError(err, branchPath(s, c))
	}
	return nil
}

func (e *encoder) release() {
	e.b.Reset()
	encoderPool.Put(e)
}

// Encode returns the encoding of r in a newly allocated buffer
func Encode(r *Record) ([]byte, error) {
	if r == nil {
		return nil, errors.ValueTypeError{Value: r, Want: "*Record"}
	}

	e := encoderPool.Get().(*encoder)
	defer e.release()

	if err := e.encodeRecord(r); err != nil {
		return nil, errors.WithFieldError(err, r.schema.name)
	}
	return append(make([]byte, 0, e.b.Len()), e.b.Bytes()...), nil
}
