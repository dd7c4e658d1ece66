// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
	"strings"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

type field struct {
	name string
	desc Descriptor
}

// view is an inline composed schema, exposed as a sub-object over a
// contiguous run of its parent's fields
type view struct {
	schema *Schema
	start  int
}

// Schema is an ordered, named list of field descriptors, optionally
// followed by a branch point.
//
// Schemas are immutable once built and may be shared between any number
// of goroutines.
type Schema struct {
	name   string
	fields []field
	index  map[string]int
	views  map[string]view
	branch *Branch
	// slot is the name under which the chosen branch variant is stored;
	// empty when the variant extends this schema's namespace instead
	slot string
	min  int
}

// Name returns the name the schema was built with
func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString(s.name)
	sb.WriteString(" {")
	for i, f := range s.fields {
		if i != 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, " %s %s", f.name, f.desc)
	}
	if s.branch != nil {
		if len(s.fields) != 0 {
			sb.WriteString(";")
		}
		if s.slot != "" {
			fmt.Fprintf(&sb, " %s %s", s.slot, s.branch)
		} else {
			fmt.Fprintf(&sb, " %s", s.branch)
		}
	}
	sb.WriteString(" }")
	return sb.String()
}

// Fields returns the names of the schema's own fields in declaration
// order. Fields merged through inline composition are included; a named
// branch slot is not.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Field returns the descriptor of the named field
func (s *Schema) Field(name string) (Descriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].desc, true
}

// Branch returns the schema's branch point, if any, and the name of the
// slot holding its variant ("" if the variant extends this schema)
func (s *Schema) Branch() (*Branch, string) {
	return s.branch, s.slot
}

// MinSize returns the fewest bytes a record of this schema can occupy
func (s *Schema) MinSize() int {
	return s.min
}

// namespace returns every name addressable on a record of this schema:
// fields, inline views, the branch slot and (transitively) the names
// merged in by extension variants
func (s *Schema) namespace() []string {
	names := s.Fields()
	for n := range s.views {
		names = append(names, n)
	}
	if s.branch != nil {
		if s.slot != "" {
			names = append(names, s.slot)
		} else {
			for _, c := range s.branch.candidates {
				names = append(names, c.namespace()...)
			}
		}
	}
	return names
}

// Builder assembles a Schema one field at a time. The first problem
// encountered is remembered and reported by Build; every method returns
// the builder so that calls may be chained.
type Builder struct {
	s     *Schema
	names map[string]struct{}
	err   error
}

// NewBuilder starts a new schema called name
func NewBuilder(name string) *Builder {
	return &Builder{
		s: &Schema{
			name:  name,
			index: make(map[string]int),
			views: make(map[string]view),
		},
		names: make(map[string]struct{}),
	}
}

func (b *Builder) fail(format string, args ...interface{}) *Builder {
	if b.err == nil {
		b.err = errors.SchemaError{Schema: b.s.name, Reason: fmt.Sprintf(format, args...)}
	}
	return b
}

func (b *Builder) usable() bool {
	switch {
	case b.err != nil:
		return false
	case b.s.branch != nil:
		b.fail("branch point must be the last entry")
		return false
	default:
		return true
	}
}

func (b *Builder) claim(name string) bool {
	if name == "" {
		b.fail("empty field name")
		return false
	}
	if _, dup := b.names[name]; dup {
		b.fail("name '%s' declared twice", name)
		return false
	}
	b.names[name] = struct{}{}
	return true
}

// checkRefs verifies that every reference names a field which has
// already been declared (and, for lengths and counts, is an integer)
func (b *Builder) checkRefs(owner string, refs []string, needInt bool) bool {
	for _, ref := range refs {
		i, ok := b.s.index[ref]
		if !ok {
			b.fail("%s refers to '%s', which is not declared before it", owner, ref)
			return false
		}
		if _, isInt := b.s.fields[i].desc.(*intCodec); needInt && !isInt {
			b.fail("%s refers to '%s', which is not an integer field", owner, ref)
			return false
		}
	}
	return true
}

func (b *Builder) add(name string, d Descriptor) {
	b.s.index[name] = len(b.s.fields)
	b.s.fields = append(b.s.fields, field{name, d})
	b.s.min += d.minSize()
}

// Field appends a field
func (b *Builder) Field(name string, d Descriptor) *Builder {
	if !b.usable() {
		return b
	}
	if d == nil {
		return b.fail("field '%s' has no descriptor", name)
	}
	if ed, ok := d.(*errorDescriptor); ok {
		return b.fail("field '%s': %s", name, ed.reason)
	}
	if !b.checkRefs(fmt.Sprintf("field '%s'", name), d.refs(), true) || !b.claim(name) {
		return b
	}
	b.add(name, d)
	return b
}

// Inline merges the fields of sub into this schema at the current
// position. They are addressable directly, and together as a sub-object
// called name.
func (b *Builder) Inline(name string, sub *Schema) *Builder {
	if !b.usable() {
		return b
	}
	switch {
	case sub == nil:
		return b.fail("inline '%s' has no schema", name)
	case sub.branch != nil:
		return b.fail("inline '%s': schema '%s' has a branch point", name, sub.name)
	}
	if !b.claim(name) {
		return b
	}
	for _, n := range sub.namespace() {
		if !b.claim(n) {
			return b
		}
	}

	start := len(b.s.fields)
	b.s.views[name] = view{schema: sub, start: start}
	for n, v := range sub.views {
		b.s.views[n] = view{schema: v.schema, start: start + v.start}
	}
	for _, f := range sub.fields {
		b.add(f.name, f.desc)
	}
	return b
}

// Branch ends the schema with a branch point whose chosen variant
// extends this schema's namespace
func (b *Builder) Branch(br *Branch) *Builder {
	return b.branch("", br)
}

// BranchField ends the schema with a branch point whose chosen variant
// is stored as a sub-record under name
func (b *Builder) BranchField(name string, br *Branch) *Builder {
	if name == "" {
		return b.fail("empty branch slot name")
	}
	return b.branch(name, br)
}

func (b *Builder) branch(slot string, br *Branch) *Builder {
	if !b.usable() {
		return b
	}
	switch {
	case br == nil:
		return b.fail("nil branch point")
	case br.err != "":
		return b.fail("branch point: %s", br.err)
	}
	if !b.checkRefs("branch point", br.refs, false) {
		return b
	}

	if slot != "" {
		if !b.claim(slot) {
			return b
		}
	} else {
		for _, c := range br.candidates {
			for _, n := range c.namespace() {
				if _, dup := b.names[n]; dup {
					return b.fail("variant '%s' redeclares '%s'", c.name, n)
				}
			}
		}
	}

	least := br.candidates[0].min
	for _, c := range br.candidates[1:] {
		if c.min < least {
			least = c.min
		}
	}

	b.s.branch = br
	b.s.slot = slot
	b.s.min += least
	return b
}

// Build returns the finished schema. The builder must not be used
// afterwards.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.s == nil {
		return nil, errors.SchemaError{Reason: "builder already used"}
	}
	s := b.s
	b.s = nil
	b.err = errors.SchemaError{Schema: s.name, Reason: "builder already used"}
	return s, nil
}

// MustBuild is like Build but panics on error. Intended for schemas
// declared in package level variables.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
