// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bytestory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDirection int

const (
	bothTest testDirection = iota
	encodeTest
	decodeTest
)

// junk placed before and after encodings in generated variants
var junk = []byte{0xde, 0xad, 0xbe, 0xef}

type testcase struct {
	// Name of this test case
	Name string

	// Which directions to run this test in (defaults to both)
	Direction testDirection

	// Schema under test
	Schema *Schema

	// The encoded representation of the record. Decoding must consume
	// exactly this much
	Bytes []byte

	// Bytes following the record which decoding must leave alone
	Trailing []byte

	// Values from which Construct builds the record to encode. If nil,
	// the encode direction only checks that the decoded record
	// re-encodes to Bytes
	Values Values

	// Inspects the decoded record
	Check func(t *testing.T, r *Record)

	// Error expected on en/decode. EncErrorIs may arise from either
	// Construct or Encode
	EncErrorIs error
	DecErrorIs error

	// For generated variants: decode from this offset
	offset int
	// For generated variants: every proper prefix of Bytes must fail
	truncated bool
}

func requireErrorIs(t *testing.T, err, target error, what string) {
	t.Helper()
	require.Errorf(t, err, "%s should have returned an error", what)
	require.Truef(t, errors.Is(err, target), "Error expected to be %s, but was %s", target, err)
}

func RunTestcases(t *testing.T, tcs []testcase) {
	generatedTestcases := append([]testcase(nil), tcs...)
	t.Parallel()

	// For every case which decodes successfully, build variants which
	// decode from an offset, and which decode truncated input
	for _, tc := range tcs {
		if tc.Direction == encodeTest || tc.DecErrorIs != nil {
			continue
		}

		shifted := tc
		shifted.Name += "+offset"
		shifted.Direction = decodeTest
		shifted.offset = len(junk)
		generatedTestcases = append(generatedTestcases, shifted)

		truncated := tc
		truncated.Name += "+truncated"
		truncated.Direction = decodeTest
		truncated.truncated = true
		generatedTestcases = append(generatedTestcases, truncated)
	}

	for _, tc := range generatedTestcases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			if tc.Direction != decodeTest {
				t.Run("Encode", func(t *testing.T) {
					t.Parallel()
					runEncode(t, tc)
				})
			}

			if tc.Direction != encodeTest {
				t.Run("Decode", func(t *testing.T) {
					t.Parallel()
					if tc.truncated {
						runTruncated(t, tc)
					} else {
						runDecode(t, tc)
					}
				})
			}
		})
	}
}

func runEncode(t *testing.T, tc testcase) {
	var r *Record
	if tc.Values != nil {
		var err error
		r, err = Construct(tc.Schema, tc.Values)
		if tc.EncErrorIs != nil && err != nil {
			requireErrorIs(t, err, tc.EncErrorIs, "Construct")
			return
		}
		require.NoError(t, err, "Construct should succeed")
	} else {
		var err error
		r, _, err = Decode(tc.Schema, tc.Bytes, 0)
		require.NoError(t, err, "Decode should succeed")
	}

	b, err := Encode(r)
	if tc.EncErrorIs != nil {
		requireErrorIs(t, err, tc.EncErrorIs, "Encode")
		return
	}
	require.NoError(t, err, "Encode should succeed")
	assert.Equal(t, tc.Bytes, b, "Expected encoded data to match")

	if tc.Check != nil {
		tc.Check(t, r)
	}
}

func runDecode(t *testing.T, tc testcase) {
	buf := append(append(append([]byte(nil), junk[:tc.offset]...), tc.Bytes...), tc.Trailing...)

	r, end, err := Decode(tc.Schema, buf, tc.offset)
	if tc.DecErrorIs != nil {
		if assert.Error(t, err, "Decoding should have returned an error") {
			assert.Truef(t, errors.Is(err, tc.DecErrorIs), "Error expected to be %s, but was %s", tc.DecErrorIs, err)
		} else {
			t.Logf("Returned %+v", r)
		}
		assert.Nil(t, r, "No record should be returned on error")
		return
	}

	require.NoError(t, err, "Decode should succeed")
	assert.Equalf(t, tc.offset+len(tc.Bytes), end, "Decoder should stop after the record, leaving %x", tc.Trailing)

	if tc.Check != nil {
		tc.Check(t, r)
	}

	// Round trip
	b, err := Encode(r)
	require.NoError(t, err, "Re-encoding a decoded record should succeed")
	assert.Equal(t, buf[tc.offset:end], b, "Re-encoding should reproduce the input")

	if tc.Values != nil {
		constructed, err := Construct(tc.Schema, tc.Values)
		require.NoError(t, err, "Construct should succeed")
		assert.Equal(t, constructed, r, "Decoded record should match the constructed one")
	}
}

func runTruncated(t *testing.T, tc testcase) {
	for k := 0; k < len(tc.Bytes); k++ {
		r, _, err := Decode(tc.Schema, tc.Bytes[:k], 0)
		if assert.Errorf(t, err, "Decoding %d of %d bytes should fail", k, len(tc.Bytes)) {
			assert.Truef(t,
				errors.Is(err, ErrOutOfBounds) || errors.Is(err, ErrUnterminated),
				"Truncated decode should run out of input, but failed with %s", err)
		}
		assert.Nil(t, r, fmt.Sprintf("No record should be returned from %d bytes", k))
	}
}
