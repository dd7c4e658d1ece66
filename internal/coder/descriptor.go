// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
)

const (
	// maxUint is the maximum value a uint can hold
	maxUint = ^uint(0)
	// maxInt is the maximum value an int can hold
	maxInt = int(maxUint >> 1)
)

// Value is a single decoded field value. It holds one of:
//
//	int64      signed integer fields
//	uint64     unsigned integer fields
//	[]byte     fixed length and terminated byte blocks
//	*Record    nested records (and named branch slots)
//	[]*Record  repeated records
type Value = interface{}

// Descriptor describes how one named slot of a schema is laid out.
//
// The set of descriptors is closed: they are created by Int, IntLE,
// FixedBytes, Terminated, Nested and Repeated. Branch points are
// attached to a schema through Builder.Branch and Builder.BranchField.
type Descriptor interface {
	fmt.Stringer

	// refs returns the names of fields which must precede this one
	refs() []string

	// minSize is the smallest number of bytes this descriptor can consume
	minSize() int

	decode(d *decoder, ctx *Context) (Value, error)
	encode(e *encoder, v Value, ctx *Context) error
	construct(v interface{}, ctx *Context) (Value, error)
}

// sizedRef resolves a length or count reference against ctx. Negative
// values are rejected, as is anything which cannot be a slice length
// on this platform.
func sizedRef(ctx *Context, ref string) (int, Value, error) {
	v, ok := ctx.Get(ref)
	if !ok {
		// Build rejects references to fields which do not precede the
		// referencing one, so this means the context was not built by us
		panic(fmt.Sprintf("reference to undecoded field '%s'", ref))
	}

	switch n := v.(type) {
	case int64:
		if n < 0 {
			return 0, v, formatErrorf("%s is negative (%d)", ref, n)
		}
		if uint64(n) > uint64(maxInt) {
			return maxInt, v, nil
		}
		return int(n), v, nil
	case uint64:
		if n > uint64(maxInt) {
			return maxInt, v, nil
		}
		return int(n), v, nil
	default:
		panic(fmt.Sprintf("reference '%s' is not an integer (%T)", ref, v))
	}
}
