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
)

func TestFilterBuilderSupportThreshold(t *testing.T) {
	fb := NewFilterBuilder(FilterBuilderOptions{MinSupport: 2, Seed: 1})

	frequent := UnaryCapture{Code: unaryCode(t, 1), Value: "often"}
	rare := UnaryCapture{Code: unaryCode(t, 1), Value: "once"}

	fb.Observe(&JoinLine{Key: "k1", Unary: []UnaryCapture{frequent, rare}})
	fb.Observe(&JoinLine{Key: "k2", Unary: []UnaryCapture{frequent}})

	broadcast := fb.Build()
	f, ok := broadcast.ConditionFilter(unaryCode(t, 1))
	require.True(t, ok)
	require.True(t, f.Test(unaryCond(t, 1, "often").Key()))
	require.False(t, f.Test(unaryCond(t, 1, "once").Key()))
}

func TestFilterBuilderCountsJoinLines(t *testing.T) {
	fb := NewFilterBuilder(FilterBuilderOptions{MinSupport: 2, Seed: 1})

	repeated := UnaryCapture{Code: unaryCode(t, 1), Value: "dup"}

	// Two occurrences within one join line count as one.
	fb.Observe(&JoinLine{Key: "k1", Unary: []UnaryCapture{repeated, repeated}})

	broadcast := fb.Build()
	f, ok := broadcast.ConditionFilter(unaryCode(t, 1))
	require.True(t, ok)
	require.False(t, f.Test(unaryCond(t, 1, "dup").Key()))
}

func TestFilterBuilderBinaryCaptures(t *testing.T) {
	fb := NewFilterBuilder(FilterBuilderOptions{MinSupport: 1, Seed: 1})

	bin := BinaryCapture{Code: binaryCode(t, 1, 2), Value1: "x", Value2: "y"}
	fb.Observe(&JoinLine{Key: "k1", Binary: []BinaryCapture{bin}})

	broadcast := fb.Build()
	cond := binaryCond(t, 1, 2, "x", "y")

	f, ok := broadcast.ConditionFilter(bin.Code)
	require.True(t, ok)
	require.True(t, f.Test(cond.Key()))

	// Binary captures feed the type-specific filter too.
	f, ok = broadcast.BinaryCaptureFilter(bin.Code)
	require.True(t, ok)
	require.True(t, f.Test(cond.Key()))

	// Unary codes never get a binary-captures filter.
	_, ok = broadcast.BinaryCaptureFilter(unaryCode(t, 1))
	require.False(t, ok)
}

// The built broadcast must satisfy a filtering collector end to end.
func TestFilterBuilderFeedsCollector(t *testing.T) {
	fb := NewFilterBuilder(FilterBuilderOptions{MinSupport: 2, Seed: 1})

	lines := []*JoinLine{testLine(t), testLine(t)}
	lines[1].Key = "k2"
	for _, line := range lines {
		fb.Observe(line)
	}

	cfg := &Config{
		UseFrequentConditionsFilter:    true,
		UseFrequentCapturesBloomFilter: true,
	}
	cfg.SetDefault()
	c := NewCollector(cfg, fb.Build())

	unary, binary, err := c.Collect(lines[0])
	require.NoError(t, err)
	require.Equal(t, 2, unary.Len())
	require.Equal(t, 1, binary.Len())
}

func TestFilterBuilderOptionsDefaults(t *testing.T) {
	var opts FilterBuilderOptions
	opts.SetDefault()
	require.Equal(t, uint32(2), opts.MinSupport)
	require.Equal(t, 0.001, opts.FalsePositiveRate)
}
