// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"sort"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// Construct builds a record of schema s from values without decoding
// anything. Every value is checked exactly as Encode would check it.
//
// Values may be any Go integer for integer fields, []byte or string for
// byte blocks, a *Record or Values for nested fields, and a slice of
// either for repeated fields. Inline composed fields may be given
// directly or grouped under the name of their sub-object. The variant of
// a branch point is selected by running its resolver over the supplied
// values: for an extending branch point the variant's fields are given
// alongside the others, while a named slot takes a *Record or Values.
func Construct(s *Schema, values Values) (*Record, error) {
	r, err := construct(s, values)
	if err != nil {
		return nil, errors.WithFieldError(err, s.name)
	}
	return r, nil
}

func construct(s *Schema, in Values) (*Record, error) {
	pending, err := flatten(s, in)
	if err != nil {
		return nil, err
	}

	r := &Record{
		schema: s,
		values: make([]Value, len(s.fields)),
	}

	ctx := newContext(s, r.values)
	for _, f := range s.fields {
		raw, ok := pending[f.name]
		if !ok {
			return nil, errors.WithFieldError(errors.ErrFieldMissing, f.name)
		}
		delete(pending, f.name)

		v, err := f.desc.construct(raw, &ctx)
		if err != nil {
			return nil, errors.WithFieldError(err, f.name)
		}
		ctx.set(v)
	}

	if s.branch != nil {
		i, c, err := s.branch.choose(&ctx)
		if err != nil {
			return nil, errors.WithFieldError(err, branchPath(s, nil))
		}

		var sub *Record
		if s.slot != "" {
			raw, ok := pending[s.slot]
			if !ok {
				return nil, errors.WithFieldError(errors.ErrFieldMissing, s.slot)
			}
			delete(pending, s.slot)
			sub, err = buildRecord(c, raw)
		} else {
			// Everything left over belongs to the variant
			sub, err = construct(c, pending)
			pending = nil
		}
		if err != nil {
			return nil, errors.WithFieldError(err, branchPath(s, c))
		}

		r.variant = &Variant{
			Index:  i,
			Schema: c,
			Record: sub,
			Slot:   s.slot,
		}
	}

	if len(pending) != 0 {
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, errors.WithFieldError(errors.ErrUnknownField, names[0])
	}
	return r, nil
}

// flatten copies in, replacing values given for inline sub-objects with
// the fields they contain
func flatten(s *Schema, in Values) (Values, error) {
	out := make(Values, len(in))
	for k, v := range in {
		vw, isView := s.views[k]
		if !isView {
			if _, dup := out[k]; dup {
				return nil, errors.WithFieldError(formatErrorf("value given more than once"), k)
			}
			out[k] = v
			continue
		}

		var sub Values
		switch v := v.(type) {
		case Values:
			var err error
			if sub, err = flatten(vw.schema, v); err != nil {
				return nil, errors.WithFieldError(err, k)
			}
		case *Record:
			if _, err := recordOf(vw.schema, v); err != nil {
				return nil, errors.WithFieldError(err, k)
			}
			sub = make(Values, len(v.values))
			for i, f := range vw.schema.fields {
				sub[f.name] = v.values[i]
			}
		default:
			return nil, errors.WithFieldError(errors.ValueTypeError{Value: v, Want: "Values"}, k)
		}

		for kk, vv := range sub {
			if _, member := vw.schema.index[kk]; !member {
				return nil, errors.WithFieldError(errors.ErrUnknownField, k, kk)
			}
			if _, dup := out[kk]; dup {
				return nil, errors.WithFieldError(formatErrorf("value given more than once"), kk)
			}
			out[kk] = vv
		}
	}
	return out, nil
}
