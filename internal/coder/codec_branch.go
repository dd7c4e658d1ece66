// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
	"strings"
)

// Resolver inspects the fields decoded so far and selects the schema
// which continues the record. It must return one of the candidates it
// was declared with.
type Resolver func(ctx *Context) *Schema

// Branch is a branch point: a decision, made once the preceding fields
// are known, as to which of a closed set of candidate schemas continues
// the record.
type Branch struct {
	resolve    Resolver
	candidates []*Schema
	refs       []string
	desc       string
	err        string
}

// Choose returns a branch point selecting between candidates with an
// arbitrary resolver. If the resolver returns anything other than one of
// the candidates, decoding and encoding fail with ErrFormat.
func Choose(r Resolver, candidates ...*Schema) *Branch {
	br := &Branch{
		resolve:    r,
		candidates: candidates,
		desc:       "choose",
	}

	switch {
	case r == nil:
		br.err = "nil resolver"
	case len(candidates) == 0:
		br.err = "no candidates"
	}

	seen := make(map[*Schema]struct{}, len(candidates))
	for _, c := range candidates {
		if c == nil {
			br.err = "nil candidate"
			break
		}
		if _, dup := seen[c]; dup {
			br.err = fmt.Sprintf("candidate '%s' listed twice", c.name)
			break
		}
		seen[c] = struct{}{}
	}
	return br
}

// When returns a branch point which continues with then if p holds and
// otherwise if it does not
func When(p Predicate, then, otherwise *Schema) *Branch {
	br := &Branch{
		resolve: func(ctx *Context) *Schema {
			if p.test(ctx) {
				return then
			}
			return otherwise
		},
		candidates: []*Schema{then, otherwise},
		refs:       p.refs,
		desc:       "when " + p.desc,
	}

	switch {
	case p.test == nil:
		br.err = "empty predicate"
	case then == nil || otherwise == nil:
		br.err = "nil candidate"
	}
	return br
}

func (br *Branch) String() string {
	names := make([]string, len(br.candidates))
	for i, c := range br.candidates {
		if c != nil {
			names[i] = c.name
		}
	}
	return fmt.Sprintf("%s(%s)", br.desc, strings.Join(names, " | "))
}

// Candidates returns the schemas this branch point may select
func (br *Branch) Candidates() []*Schema {
	return append([]*Schema(nil), br.candidates...)
}

// choose runs the resolver, returning the index of the selected candidate
func (br *Branch) choose(ctx *Context) (int, *Schema, error) {
	s := br.resolve(ctx)
	if s == nil {
		return -1, nil, formatErrorf("resolver selected no candidate")
	}
	for i, c := range br.candidates {
		if c == s {
			return i, s, nil
		}
	}
	return -1, nil, formatErrorf("resolver selected undeclared schema '%s'", s.name)
}

// Predicate is a test over fields which have already been decoded. It
// records the names of the fields it reads so that schemas can verify
// they precede the branch point.
type Predicate struct {
	refs []string
	test func(ctx *Context) bool
	desc string
}

// FieldEquals holds when the field called name equals v. Integers compare
// numerically whatever their Go type; byte blocks compare by content and
// may be given as a string.
func FieldEquals(name string, v interface{}) Predicate {
	return Predicate{
		refs: []string{name},
		test: func(ctx *Context) bool {
			fv, ok := ctx.Get(name)
			return ok && equalValues(fv, v)
		},
		desc: fmt.Sprintf("%s == %v", name, v),
	}
}

// FieldsEqual holds when the fields called a and b hold equal values
func FieldsEqual(a, b string) Predicate {
	return Predicate{
		refs: []string{a, b},
		test: func(ctx *Context) bool {
			av, aok := ctx.Get(a)
			bv, bok := ctx.Get(b)
			return aok && bok && equalValues(av, bv)
		},
		desc: fmt.Sprintf("%s == %s", a, b),
	}
}

// Not inverts p
func Not(p Predicate) Predicate {
	test := p.test
	if test != nil {
		test = func(ctx *Context) bool {
			return !p.test(ctx)
		}
	}
	return Predicate{
		refs: p.refs,
		test: test,
		desc: "!(" + p.desc + ")",
	}
}

// Test wraps an arbitrary function as a predicate. refs names every field
// fn reads.
func Test(fn func(ctx *Context) bool, refs ...string) Predicate {
	return Predicate{
		refs: refs,
		test: fn,
		desc: "test(" + strings.Join(refs, ", ") + ")",
	}
}
