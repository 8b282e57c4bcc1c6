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

package cind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sodaplab/rdfind/pkg/common/bloomfilter"
	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Test attribute layout: attribute 0 is the join column, attributes
// 1..n are the profiled columns.
const testJoinAttr = int32(0)

func unaryCode(t *testing.T, attr int32) condition.Code {
	t.Helper()
	code, err := condition.EncodeUnary(attr, testJoinAttr)
	require.NoError(t, err)
	return code
}

func binaryCode(t *testing.T, attrA, attrB int32) condition.Code {
	t.Helper()
	code, err := condition.EncodeBinary(attrA, attrB, testJoinAttr)
	require.NoError(t, err)
	return code
}

func unaryCond(t *testing.T, attr int32, value string) condition.Condition {
	t.Helper()
	return condition.Condition{Code: unaryCode(t, attr), Value1: value}
}

func binaryCond(t *testing.T, attrA, attrB int32, v1, v2 string) condition.Condition {
	t.Helper()
	return condition.Condition{Code: binaryCode(t, attrA, attrB), Value1: v1, Value2: v2}
}

func filterWith(conds ...condition.Condition) *bloomfilter.BloomFilter {
	f := bloomfilter.NewWithSeed(1<<12, 4, 1)
	for _, c := range conds {
		f.Add(c.Key())
	}
	return f
}

func testLine(t *testing.T) *JoinLine {
	return &JoinLine{
		Key: "k1",
		Unary: []UnaryCapture{
			{Code: unaryCode(t, 1), Value: "a"},
			{Code: unaryCode(t, 2), Value: "b"},
		},
		Binary: []BinaryCapture{
			{Code: binaryCode(t, 1, 2), Value1: "a", Value2: "b"},
		},
	}
}

func TestCollectNoFilters(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefault()
	c := NewCollector(cfg, NewBroadcast())

	unary, binary, err := c.Collect(testLine(t))
	require.NoError(t, err)

	// The splits of the binary capture coincide with the direct unary
	// captures, so the unary set stays at two.
	require.Equal(t, 2, unary.Len())
	require.True(t, unary.Contains(unaryCond(t, 1, "a")))
	require.True(t, unary.Contains(unaryCond(t, 2, "b")))

	require.Equal(t, 1, binary.Len())
	require.True(t, binary.Contains(binaryCond(t, 1, 2, "a", "b")))
}

func TestCollectSplitAddsUnaries(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefault()
	c := NewCollector(cfg, NewBroadcast())

	line := &JoinLine{
		Key: "k1",
		Binary: []BinaryCapture{
			{Code: binaryCode(t, 1, 2), Value1: "x", Value2: "y"},
		},
	}
	unary, binary, err := c.Collect(line)
	require.NoError(t, err)

	require.Equal(t, 2, unary.Len())
	require.True(t, unary.Contains(unaryCond(t, 1, "x")))
	require.True(t, unary.Contains(unaryCond(t, 2, "y")))
	require.Equal(t, 1, binary.Len())
}

func TestCollectFrequencyFilter(t *testing.T) {
	cfg := &Config{UseFrequentConditionsFilter: true}
	cfg.SetDefault()

	u1 := unaryCond(t, 1, "a")
	bin := binaryCond(t, 1, 2, "a", "b")

	broadcast := NewBroadcast()
	broadcast.SetConditionFilter(u1.Code, filterWith(u1))
	// Attribute 2's condition never made the threshold.
	broadcast.SetConditionFilter(unaryCode(t, 2), filterWith())
	broadcast.SetConditionFilter(bin.Code, filterWith(bin))

	c := NewCollector(cfg, broadcast)
	unary, binary, err := c.Collect(testLine(t))
	require.NoError(t, err)

	// The infrequent direct capture of attribute 2 is pruned, but its
	// split twin survives: the split is gated by the binary verdict.
	require.Equal(t, 2, unary.Len())
	require.True(t, unary.Contains(unaryCond(t, 2, "b")))
	require.Equal(t, 1, binary.Len())
}

func TestCollectInfrequentBinarySkipped(t *testing.T) {
	cfg := &Config{UseFrequentConditionsFilter: true}
	cfg.SetDefault()

	bin := binaryCond(t, 1, 2, "x", "y")
	broadcast := NewBroadcast()
	broadcast.SetConditionFilter(bin.Code, filterWith())

	line := &JoinLine{
		Key:    "k1",
		Binary: []BinaryCapture{{Code: bin.Code, Value1: "x", Value2: "y"}},
	}
	c := NewCollector(cfg, broadcast)
	unary, binary, err := c.Collect(line)
	require.NoError(t, err)

	// An infrequent binary contributes nothing, splits included.
	require.Equal(t, 0, unary.Len())
	require.Equal(t, 0, binary.Len())
}

func TestCollectBinaryCaptureDoubleGate(t *testing.T) {
	cfg := &Config{
		UseFrequentConditionsFilter:    true,
		UseFrequentCapturesBloomFilter: true,
	}
	cfg.SetDefault()

	bin := binaryCond(t, 1, 2, "x", "y")
	broadcast := NewBroadcast()
	broadcast.SetConditionFilter(bin.Code, filterWith(bin))
	broadcast.SetBinaryCaptureFilter(bin.Code, filterWith())

	line := &JoinLine{
		Key:    "k1",
		Binary: []BinaryCapture{{Code: bin.Code, Value1: "x", Value2: "y"}},
	}
	c := NewCollector(cfg, broadcast)
	unary, binary, err := c.Collect(line)
	require.NoError(t, err)

	// Frequent overall, so the splits land, but the type-specific
	// filter rejects the binary condition itself.
	require.Equal(t, 2, unary.Len())
	require.Equal(t, 0, binary.Len())
}

func TestCollectMissingFilterIsError(t *testing.T) {
	cfg := &Config{UseFrequentConditionsFilter: true}
	cfg.SetDefault()

	c := NewCollector(cfg, NewBroadcast())
	_, _, err := c.Collect(testLine(t))
	require.True(t, rderr.IsErrCode(err, rderr.ErrMissingFrequencyFilter))
}

func TestCollectMissingBinaryCaptureFilterIsError(t *testing.T) {
	cfg := &Config{
		UseFrequentConditionsFilter:    true,
		UseFrequentCapturesBloomFilter: true,
	}
	cfg.SetDefault()

	bin := binaryCond(t, 1, 2, "x", "y")
	broadcast := NewBroadcast()
	broadcast.SetConditionFilter(bin.Code, filterWith(bin))
	// No binary-captures filter broadcast for the code.

	line := &JoinLine{
		Key:    "k1",
		Binary: []BinaryCapture{{Code: bin.Code, Value1: "x", Value2: "y"}},
	}
	c := NewCollector(cfg, broadcast)
	_, _, err := c.Collect(line)
	require.True(t, rderr.IsErrCode(err, rderr.ErrMissingFrequencyFilter))
}
