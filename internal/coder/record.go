// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

// Values supplies field values to Construct, keyed by field name
type Values = map[string]interface{}

// Variant records which candidate a branch point selected
type Variant struct {
	// Index of the chosen schema among the branch point's candidates
	Index int
	// Schema is the chosen candidate
	Schema *Schema
	// Record holds the fields decoded with the chosen candidate
	Record *Record
	// Slot is the name the variant is stored under, or "" if its fields
	// extend the enclosing record
	Slot string
}

// Record is a decoded (or constructed) value of a schema. Records are
// immutable.
type Record struct {
	schema  *Schema
	values  []Value
	variant *Variant
}

// Schema returns the schema the record was built from
func (r *Record) Schema() *Schema {
	return r.schema
}

// Is reports whether the record is of schema s: either it was built from
// s, or s is the variant chosen by an extending branch point
func (r *Record) Is(s *Schema) bool {
	for ; r != nil; r = r.extension() {
		if r.schema == s {
			return true
		}
	}
	return false
}

func (r *Record) extension() *Record {
	if r.variant == nil || r.variant.Slot != "" {
		return nil
	}
	return r.variant.Record
}

// Variant returns the variant chosen by the schema's branch point
func (r *Record) Variant() (Variant, bool) {
	if r.variant == nil {
		return Variant{}, false
	}
	return *r.variant, true
}

// Fields returns the names of every field of the record in encoding
// order, including those contributed by branch variants
func (r *Record) Fields() []string {
	names := r.schema.Fields()
	if r.variant != nil {
		if r.variant.Slot != "" {
			names = append(names, r.variant.Slot)
		} else {
			names = append(names, r.variant.Record.Fields()...)
		}
	}
	return names
}

// Get returns the named value. Inline composed sub-objects are returned
// as records over the parent's fields.
func (r *Record) Get(name string) (Value, bool) {
	for ; r != nil; r = r.extension() {
		if i, ok := r.schema.index[name]; ok {
			return r.values[i], true
		}
		if v, ok := r.schema.views[name]; ok {
			return &Record{
				schema: v.schema,
				values: r.values[v.start : v.start+len(v.schema.fields)],
			}, true
		}
		if r.variant != nil && r.variant.Slot == name {
			return r.variant.Record, true
		}
	}
	return nil, false
}

// Int returns the named integer field. Unsigned values are converted.
// Zero is returned for absent or non-integer fields.
func (r *Record) Int(name string) int64 {
	v, _ := r.Get(name)
	switch v := v.(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	default:
		return 0
	}
}

// Uint returns the named integer field. Signed values are converted.
// Zero is returned for absent or non-integer fields.
func (r *Record) Uint(name string) uint64 {
	v, _ := r.Get(name)
	switch v := v.(type) {
	case int64:
		return uint64(v)
	case uint64:
		return v
	default:
		return 0
	}
}

// Bytes returns the named byte block, or nil
func (r *Record) Bytes(name string) []byte {
	v, _ := r.Get(name)
	b, _ := v.([]byte)
	return b
}

// Record returns the named sub-record (a nested field, inline view or
// branch slot), or nil
func (r *Record) Record(name string) *Record {
	v, _ := r.Get(name)
	sub, _ := v.(*Record)
	return sub
}

// View is Record for inline composed sub-objects
func (r *Record) View(name string) *Record {
	for ; r != nil; r = r.extension() {
		if _, ok := r.schema.views[name]; ok {
			return r.Record(name)
		}
	}
	return nil
}

// Records returns the named repeated field, or nil
func (r *Record) Records(name string) []*Record {
	v, _ := r.Get(name)
	rs, _ := v.([]*Record)
	return rs
}

// Context is the set of fields decoded so far during one pass over a
// schema. Only fields preceding the one being processed are visible.
type Context struct {
	schema *Schema
	values []Value
	n      int
}

func newContext(s *Schema, values []Value) Context {
	return Context{schema: s, values: values}
}

func (c *Context) set(v Value) {
	c.values[c.n] = v
	c.n++
}

// Schema returns the schema being processed
func (c *Context) Schema() *Schema {
	return c.schema
}

// Get returns the value of an already processed field
func (c *Context) Get(name string) (Value, bool) {
	i, ok := c.schema.index[name]
	if !ok || i >= c.n {
		return nil, false
	}
	return c.values[i], true
}

// Has reports whether the named field has already been processed
func (c *Context) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Int returns the named integer field, if it has been processed and is
// representable as an int64
func (c *Context) Int(name string) (int64, bool) {
	v, _ := c.Get(name)
	x, negative, ok := asInteger(v)
	if !ok || (!negative && int64(x) < 0) {
		return 0, false
	}
	return int64(x), true
}

// Uint returns the named integer field, if it has been processed and is
// non-negative
func (c *Context) Uint(name string) (uint64, bool) {
	v, _ := c.Get(name)
	x, negative, ok := asInteger(v)
	if !ok || negative {
		return 0, false
	}
	return x, true
}

// Bytes returns the named byte block, if it has been processed
func (c *Context) Bytes(name string) ([]byte, bool) {
	v, _ := c.Get(name)
	b, ok := v.([]byte)
	return b, ok
}
