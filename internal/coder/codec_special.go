// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"

	"github.com/no1xsyzy/bytestory/internal/errors"
)

// descriptor embedding a fixed, memoised construction problem. Builders
// refuse to accept it, so it never reaches the engine.
type errorDescriptor struct {
	reason string
}

var _ Descriptor = &errorDescriptor{}

func invalid(format string, args ...interface{}) Descriptor {
	return &errorDescriptor{fmt.Sprintf(format, args...)}
}

func (c *errorDescriptor) String() string {
	return "invalid(" + c.reason + ")"
}

func (c *errorDescriptor) refs() []string { return nil }
func (c *errorDescriptor) minSize() int   { return 0 }

func (c *errorDescriptor) decode(d *decoder, ctx *Context) (Value, error) {
	return nil, errors.SchemaError{Reason: c.reason}
}

func (c *errorDescriptor) encode(e *encoder, v Value, ctx *Context) error {
	return errors.SchemaError{Reason: c.reason}
}

func (c *errorDescriptor) construct(v interface{}, ctx *Context) (Value, error) {
	return nil, errors.SchemaError{Reason: c.reason}
}

func formatErrorf(format string, args ...interface{}) error {
	return errors.FormatError{Reason: fmt.Sprintf(format, args...)}
}
