// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bytestory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tuChar = NewSchema("TUChar").
		Field("c", UChar()).
		MustBuild()

	tuZeroTermBytes = NewSchema("TUZeroTermBytes").
			Field("bs", Terminated([]byte{0})).
			MustBuild()

	typedUnion = NewSchema("TypedUnion").
			Field("typechar", UChar()).
			Branch(Choose(func(ctx *Context) *Schema {
			if tc, _ := ctx.Uint("typechar"); tc == 1 {
				return tuChar
			}
			return tuZeroTermBytes
		}, tuChar, tuZeroTermBytes)).
		MustBuild()

	dataUChar = NewSchema("DataUChar").
			Field("c", UChar()).
			MustBuild()

	dataZTB = NewSchema("DataZTB").
		Field("bs", Terminated([]byte{0})).
		MustBuild()

	data = NewSchema("Data").
		Field("typechar", UChar()).
		BranchField("payload", When(FieldEquals("typechar", 1), dataUChar, dataZTB)).
		MustBuild()

	messages = NewSchema("Messages").
			Field("n", UChar()).
			Field("msgs", Repeated("n", typedUnion)).
			MustBuild()

	// Resolvers which break their contract
	outsider = NewSchema("Outsider").
			Field("x", UChar()).
			MustBuild()

	rogue = NewSchema("Rogue").
		Field("typechar", UChar()).
		Branch(Choose(func(ctx *Context) *Schema {
			return outsider
		}, tuChar)).
		MustBuild()

	undecided = NewSchema("Undecided").
			Field("typechar", UChar()).
			Branch(Choose(func(ctx *Context) *Schema {
			return nil
		}, tuChar)).
		MustBuild()
)

func TestBranches(t *testing.T) {
	testcases := []testcase{
		{
			Name:   "choose, first candidate",
			Schema: typedUnion,
			Bytes:  []byte{0x01, 0xaa},
			Values: Values{"typechar": 1, "c": 0xaa},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Is(typedUnion))
				assert.True(t, r.Is(tuChar))
				assert.False(t, r.Is(tuZeroTermBytes))
				assert.Equal(t, uint64(0xaa), r.Uint("c"))
				assert.Equal(t, []string{"typechar", "c"}, r.Fields())

				v, ok := r.Variant()
				require.True(t, ok)
				assert.Equal(t, 0, v.Index)
				assert.Equal(t, tuChar, v.Schema)
				assert.Equal(t, "", v.Slot)
			},
		}, {
			Name:   "choose, second candidate",
			Schema: typedUnion,
			Bytes:  []byte("\x02bytes\x00"),
			Values: Values{"typechar": 2, "bs": "bytes\x00"},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Is(tuZeroTermBytes))
				assert.False(t, r.Is(tuChar))
				assert.Equal(t, []byte("bytes\x00"), r.Bytes("bs"))

				_, ok := r.Get("c")
				assert.False(t, ok, "fields of the other candidate are absent")

				v, _ := r.Variant()
				assert.Equal(t, 1, v.Index)
			},
		}, {
			Name:   "when, true",
			Schema: data,
			Bytes:  []byte{0x01, 0xaa},
			Values: Values{"typechar": 1, "payload": Values{"c": 0xaa}},
			Check: func(t *testing.T, r *Record) {
				p := r.Record("payload")
				require.NotNil(t, p)
				assert.True(t, p.Is(dataUChar))
				assert.False(t, r.Is(dataUChar))
				assert.Equal(t, uint64(0xaa), p.Uint("c"))
				assert.Equal(t, []string{"typechar", "payload"}, r.Fields())

				v, _ := r.Variant()
				assert.Equal(t, "payload", v.Slot)
				assert.Equal(t, p, v.Record)
			},
		}, {
			Name:   "when, false",
			Schema: data,
			Bytes:  []byte("\x02bytes\x00"),
			Values: Values{"typechar": 2, "payload": Values{"bs": []byte("bytes\x00")}},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Record("payload").Is(dataZTB))
				assert.Equal(t, []byte("bytes\x00"), r.Record("payload").Bytes("bs"))
			},
		}, {
			Name:   "when, slot given as a record",
			Schema: data,
			Bytes:  []byte{0x01, 0x07},
			Values: Values{"typechar": 1, "payload": mustConstruct(dataUChar, Values{"c": 7})},
		}, {
			Name:   "branching records repeated",
			Schema: messages,
			Bytes:  []byte("\x02\x01\xaa\x02hi\x00"),
			Values: Values{
				"n": 2,
				"msgs": []Values{
					{"typechar": 1, "c": 0xaa},
					{"typechar": 2, "bs": "hi\x00"},
				},
			},
			Check: func(t *testing.T, r *Record) {
				msgs := r.Records("msgs")
				require.Len(t, msgs, 2)
				assert.True(t, msgs[0].Is(tuChar))
				assert.True(t, msgs[1].Is(tuZeroTermBytes))
			},
		}, {
			Name:       "choose, variant fields missing",
			Direction:  encodeTest,
			Schema:     typedUnion,
			Values:     Values{"typechar": 1},
			EncErrorIs: ErrFieldMissing,
		}, {
			Name:       "choose, fields of the wrong variant",
			Direction:  encodeTest,
			Schema:     typedUnion,
			Values:     Values{"typechar": 1, "bs": "x\x00"},
			EncErrorIs: ErrFieldMissing,
		}, {
			Name:       "when, slot missing",
			Direction:  encodeTest,
			Schema:     data,
			Values:     Values{"typechar": 1},
			EncErrorIs: ErrFieldMissing,
		}, {
			Name:       "when, slot of the wrong schema",
			Direction:  encodeTest,
			Schema:     data,
			Values:     Values{"typechar": 1, "payload": mustConstruct(dataZTB, Values{"bs": "\x00"})},
			EncErrorIs: ErrFormat,
		}, {
			Name:       "resolver selects undeclared schema",
			Schema:     rogue,
			Bytes:      []byte{0x01, 0x00},
			Values:     Values{"typechar": 1, "c": 0},
			EncErrorIs: ErrFormat,
			DecErrorIs: ErrFormat,
		}, {
			Name:       "resolver selects nothing",
			Schema:     undecided,
			Bytes:      []byte{0x01, 0x00},
			Values:     Values{"typechar": 1, "c": 0},
			EncErrorIs: ErrFormat,
			DecErrorIs: ErrFormat,
		}, {
			Name:       "variant truncated",
			Direction:  decodeTest,
			Schema:     typedUnion,
			Bytes:      []byte{0x01},
			DecErrorIs: ErrOutOfBounds,
		},
	}

	RunTestcases(t, testcases)
}

func TestPredicates(t *testing.T) {
	same := NewSchema("Same").MustBuild()
	differ := NewSchema("Differ").
		Field("extra", UChar()).
		MustBuild()
	pair := NewSchema("Pair").
		Field("a", UChar()).
		Field("b", Char()).
		Branch(When(Not(FieldsEqual("a", "b")), differ, same)).
		MustBuild()

	v1 := NewSchema("V1").
		Field("n", UChar()).
		MustBuild()
	v2 := NewSchema("V2").
		Field("n", UShort()).
		MustBuild()
	tagged := NewSchema("Tagged").
		Field("magic", Terminated([]byte{0})).
		BranchField("body", When(FieldEquals("magic", "v2\x00"), v2, v1)).
		MustBuild()

	highBit := NewSchema("HighBit").
		Field("flags", UChar()).
		Branch(When(Test(func(ctx *Context) bool {
			f, _ := ctx.Uint("flags")
			return f&0x80 != 0
		}, "flags"), differ, same)).
		MustBuild()

	testcases := []testcase{
		{
			Name:   "fields equal",
			Schema: pair,
			Bytes:  []byte{0x05, 0x05},
			Values: Values{"a": 5, "b": 5},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Is(same))
			},
		}, {
			Name:   "fields differ",
			Schema: pair,
			Bytes:  []byte{0x05, 0x06, 0x07},
			Values: Values{"a": 5, "b": 6, "extra": 7},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Is(differ))
			},
		}, {
			Name:   "unsigned and signed compared numerically",
			Schema: pair,
			Bytes:  []byte{0xff, 0xff, 0x00},
			Values: Values{"a": 255, "b": -1, "extra": 0},
		}, {
			Name:   "bytes compared by content",
			Schema: tagged,
			Bytes:  []byte("v2\x00\x01\x02"),
			Values: Values{"magic": "v2\x00", "body": Values{"n": 0x102}},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Record("body").Is(v2))
			},
		}, {
			Name:   "bytes differ",
			Schema: tagged,
			Bytes:  []byte("v1\x00\x01"),
			Values: Values{"magic": "v1\x00", "body": Values{"n": 1}},
			Check: func(t *testing.T, r *Record) {
				assert.True(t, r.Record("body").Is(v1))
			},
		}, {
			Name:   "test, set",
			Schema: highBit,
			Bytes:  []byte{0x80, 0x01},
			Values: Values{"flags": 0x80, "extra": 1},
		}, {
			Name:   "test, clear",
			Schema: highBit,
			Bytes:  []byte{0x7f},
			Values: Values{"flags": 0x7f},
		},
	}

	RunTestcases(t, testcases)
}

func TestBranchErrorPaths(t *testing.T) {
	t.Parallel()

	_, _, err := Decode(typedUnion, []byte("\x02bytes"), 0)
	requireErrorIs(t, err, ErrUnterminated, "Decode")
	assert.Contains(t, err.Error(), "(at TypedUnion(TUZeroTermBytes).bs)")

	_, _, err = Decode(data, []byte("\x02bytes"), 0)
	requireErrorIs(t, err, ErrUnterminated, "Decode")
	assert.Contains(t, err.Error(), "(at Data.payload(DataZTB).bs)")

	_, _, err = Decode(rogue, []byte{0x01, 0x00}, 0)
	requireErrorIs(t, err, ErrFormat, "Decode")
	assert.Contains(t, err.Error(), "Outsider")
}

func TestEncodeRechecksVariant(t *testing.T) {
	t.Parallel()

	a := NewSchema("A").Field("x", UChar()).MustBuild()
	b := NewSchema("B").Field("y", UChar()).MustBuild()

	pickA := true
	fickle := NewSchema("Fickle").
		Branch(Choose(func(ctx *Context) *Schema {
			if pickA {
				return a
			}
			return b
		}, a, b)).
		MustBuild()

	r, err := Construct(fickle, Values{"x": 1})
	require.NoError(t, err)
	out, err := Encode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)

	// The stored variant no longer matches what decoding would select
	pickA = false
	_, err = Encode(r)
	requireErrorIs(t, err, ErrFormat, "Encode")
	assert.Contains(t, err.Error(), "(at Fickle(A))")
}
