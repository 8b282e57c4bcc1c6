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
	hll "github.com/axiomhq/hyperloglog"
	"go.uber.org/zap"

	"github.com/sodaplab/rdfind/pkg/common/bloomfilter"
	"github.com/sodaplab/rdfind/pkg/container/condition"
	"github.com/sodaplab/rdfind/pkg/logutil"
)

// FilterBuilderOptions tune the frequency pass that fills the
// broadcast filters.
type FilterBuilderOptions struct {
	// MinSupport is the least number of join lines a condition must
	// occur in to count as frequent.
	MinSupport uint32 `toml:"min-support"`
	// FalsePositiveRate of the built bloom filters.
	FalsePositiveRate float64 `toml:"false-positive-rate"`
	// Seed fixes the filter seeds so independently built broadcasts
	// agree bit-for-bit.
	Seed uint64 `toml:"seed"`
}

func (o *FilterBuilderOptions) SetDefault() {
	if o.MinSupport == 0 {
		o.MinSupport = 2
	}
	if o.FalsePositiveRate == 0 {
		o.FalsePositiveRate = 0.001
	}
}

type codeStats struct {
	counts map[string]uint32
	sketch *hll.Sketch
}

func newCodeStats() *codeStats {
	return &codeStats{
		counts: make(map[string]uint32),
		sketch: hll.New14(),
	}
}

func (s *codeStats) observe(key []byte) {
	s.counts[string(key)]++
	s.sketch.Insert(key)
}

// FilterBuilder is the upstream frequency pass, run in memory: it
// observes every join line unfiltered, counts exact per-condition
// support, sketches per-code cardinality, and builds one bloom filter
// per condition code sized from the sketch estimate.
type FilterBuilder struct {
	opts FilterBuilderOptions

	conditions     map[condition.Code]*codeStats
	binaryCaptures map[condition.Code]*codeStats
}

func NewFilterBuilder(opts FilterBuilderOptions) *FilterBuilder {
	opts.SetDefault()
	return &FilterBuilder{
		opts:           opts,
		conditions:     make(map[condition.Code]*codeStats),
		binaryCaptures: make(map[condition.Code]*codeStats),
	}
}

func (fb *FilterBuilder) stats(m map[condition.Code]*codeStats, code condition.Code) *codeStats {
	s, ok := m[code]
	if !ok {
		s = newCodeStats()
		m[code] = s
	}
	return s
}

// Observe counts the captures of one join line. The derivation must
// match the Collector's so that filter lookups hit the same keys;
// split-derived unary conditions need no entry of their own because
// their frequency gate is the original binary condition.
func (fb *FilterBuilder) Observe(line *JoinLine) {
	// Support counts join lines, not occurrences: a capture repeated
	// within one line counts once.
	seen := make(map[string]struct{}, len(line.Unary)+len(line.Binary))
	for _, uc := range line.Unary {
		cond := condition.Condition{Code: uc.Code, Value1: uc.Value}
		key := cond.Key()
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		fb.stats(fb.conditions, cond.Code).observe(key)
	}
	for _, bc := range line.Binary {
		cond := condition.Condition{Code: bc.Code, Value1: bc.Value1, Value2: bc.Value2}
		key := cond.Key()
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		fb.stats(fb.conditions, cond.Code).observe(key)
		fb.stats(fb.binaryCaptures, cond.Code).observe(key)
	}
}

// Build assembles the broadcast map: one filter per observed condition
// code, sized by the sketch's cardinality estimate, containing every
// condition at or above the support threshold.
func (fb *FilterBuilder) Build() *Broadcast {
	broadcast := NewBroadcast()
	for code, stats := range fb.conditions {
		broadcast.SetConditionFilter(code, fb.buildFilter(code, stats))
	}
	for code, stats := range fb.binaryCaptures {
		broadcast.SetBinaryCaptureFilter(code, fb.buildFilter(code, stats))
	}
	logutil.Debug("built frequency broadcast",
		zap.Int("conditionFilters", len(fb.conditions)),
		zap.Int("binaryCaptureFilters", len(fb.binaryCaptures)))
	return broadcast
}

func (fb *FilterBuilder) buildFilter(code condition.Code, stats *codeStats) *bloomfilter.BloomFilter {
	estimate := int64(stats.sketch.Estimate())
	f := bloomfilter.NewWithProbabilityAndSeed(
		estimate, fb.opts.FalsePositiveRate, fb.opts.Seed+uint64(code))
	for key, count := range stats.counts {
		if count >= fb.opts.MinSupport {
			f.Add([]byte(key))
		}
	}
	return f
}
