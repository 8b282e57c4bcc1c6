// Copyright 2022 Sodap Lab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package condition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
)

func TestEncodeUnaryRoundTrip(t *testing.T) {
	cases := []struct {
		primary, secondary int32
	}{
		{0, 0},
		{1, 0},
		{5, NoAttribute},
		{MaxAttribute, MaxAttribute},
	}
	for _, c := range cases {
		code, err := EncodeUnary(c.primary, c.secondary)
		require.NoError(t, err)
		require.True(t, code.IsUnary())
		require.False(t, code.IsBinary())

		a, b, s, err := Decode(code, false)
		require.NoError(t, err)
		require.Equal(t, c.primary, a)
		require.Equal(t, NoAttribute, b)
		require.Equal(t, c.secondary, s)
	}
}

func TestEncodeBinaryRoundTrip(t *testing.T) {
	cases := []struct {
		primaryA, primaryB, secondary int32
	}{
		{0, 1, 2},
		{1, 2, 0},
		{3, 7, NoAttribute},
		{MaxAttribute, 0, MaxAttribute},
	}
	for _, c := range cases {
		code, err := EncodeBinary(c.primaryA, c.primaryB, c.secondary)
		require.NoError(t, err)
		require.True(t, code.IsBinary())

		a, b, s, err := Decode(code, true)
		require.NoError(t, err)
		require.Equal(t, c.primaryA, a)
		require.Equal(t, c.primaryB, b)
		require.Equal(t, c.secondary, s)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	_, err := EncodeUnary(-1, 0)
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))

	_, err = EncodeUnary(MaxAttribute+1, 0)
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))

	_, err = EncodeUnary(0, -2)
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))

	_, err = EncodeBinary(0, MaxAttribute+1, 0)
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))
}

func TestDecodeMalformed(t *testing.T) {
	// Reserved bits set.
	_, _, _, err := Decode(Code(1<<30), false)
	require.True(t, rderr.IsErrCode(err, rderr.ErrMalformedConditionCode))

	_, _, _, err = Decode(Code(-1), false)
	require.True(t, rderr.IsErrCode(err, rderr.ErrMalformedConditionCode))

	// Populated secondary but empty primary slot.
	_, _, _, err = Decode(Code(5), false)
	require.True(t, rderr.IsErrCode(err, rderr.ErrMalformedConditionCode))

	// A unary code is not a double code.
	unary, err := EncodeUnary(3, 0)
	require.NoError(t, err)
	_, _, _, err = Decode(unary, true)
	require.True(t, rderr.IsErrCode(err, rderr.ErrMalformedConditionCode))
}

func TestCodesAreDistinct(t *testing.T) {
	// Slot shifting keeps (a, b) apart from (b, a) and from unary a.
	u1, err := EncodeUnary(1, 0)
	require.NoError(t, err)
	u2, err := EncodeUnary(2, 0)
	require.NoError(t, err)
	b12, err := EncodeBinary(1, 2, 0)
	require.NoError(t, err)
	b21, err := EncodeBinary(2, 1, 0)
	require.NoError(t, err)

	codes := map[Code]bool{u1: true, u2: true, b12: true, b21: true}
	require.Len(t, codes, 4)
}
