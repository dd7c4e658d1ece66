// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package bytestory decodes byte buffers into structured records, and
// encodes those records back into exactly the same bytes, according to a
// declarative schema.
//
// A schema is an ordered list of named fields, built once (typically in a
// package level variable) and then shared freely:
//
//     var Entry = bytestory.NewSchema("Entry").
//         Field("length", bytestory.UChar()).
//         Field("name", bytestory.FixedBytes("length")).
//         MustBuild()
//
// The available field descriptors are:
//
//                   Descriptor | Layout                               | Value
//     -------------------------+--------------------------------------+------------
//          Int(width, signed)  | width byte big-endian integer        | int64/uint64
//        IntLE(width, signed)  | width byte little-endian integer     | int64/uint64
//            FixedBytes(ref)   | as many bytes as the field ref holds | []byte
//            Terminated(term)  | bytes up to and including term       | []byte
//               Nested(schema) | a sub-record                         | *Record
//       Repeated(ref, schema)  | as many sub-records as ref holds     | []*Record
//
// Char, UChar, Short, UShort, Long, ULong, LongLong and ULongLong are
// shorthands for the 1, 2, 4 and 8 byte signed and unsigned integers.
//
// Length and count references must name integer fields declared earlier
// in the same schema; this is checked when the schema is built, never
// while decoding.
//
// Sub-schemas may be composed two ways, which occupy identical bytes:
//
//     Inline(name, schema)  merges the sub-schema's fields into the parent,
//                           where they are addressable directly and,
//                           together, as the sub-object name
//     Field(name, Nested(schema))
//                           stores a sub-record under name
//
// A schema may end with a branch point, which selects the schema that
// continues the record once the preceding fields are known. Choose takes
// an arbitrary resolver and the closed set of candidates it may return;
// When is a two-way selector over a predicate such as FieldEquals. A
// branch point attached with Branch extends the record, which then also
// reports as being of the chosen schema (see Record.Is); one attached
// with BranchField stores the chosen variant as a sub-record under a
// name. Either way Record.Variant reports which candidate was chosen.
//
// The central guarantee is the round trip: for any record decoded with
//
//     r, end, err := bytestory.Decode(schema, buf, off)
//
// Encode(r) returns exactly buf[off:end]. Records may also be built
// directly with Construct, which applies the same checks as Encode.
//
// All errors may be tested for with errors.Is against the Err* values of
// this package, and describe the path of the field at which they arose.
package bytestory

import (
	"github.com/no1xsyzy/bytestory/internal/coder"
)

// Schema is an ordered, named list of field descriptors with an optional
// trailing branch point. Schemas are immutable and safe for concurrent use.
type Schema = coder.Schema

// Builder assembles a Schema
type Builder = coder.Builder

// Descriptor describes the layout of a single field
type Descriptor = coder.Descriptor

// Record is an immutable decoded (or constructed) value of a schema
type Record = coder.Record

// Variant describes the candidate chosen by a branch point
type Variant = coder.Variant

// Context gives resolvers and predicates access to the fields decoded
// before a branch point
type Context = coder.Context

// Branch is a branch point
type Branch = coder.Branch

// Resolver selects the schema which continues a record
type Resolver = coder.Resolver

// Predicate is a test over already decoded fields, used by When
type Predicate = coder.Predicate

// Values supplies field values to Construct
type Values = coder.Values

// Value is a decoded field value: int64, uint64, []byte, *Record or
// []*Record
type Value = coder.Value
