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

package engine

import (
	"sort"

	"github.com/sodaplab/rdfind/pkg/cind"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Aggregator folds the per-join-line candidate stream into global
// candidates: counts are summed and reference lists intersected per
// dependent condition. Not safe for concurrent use; the engine's
// single collector goroutine feeds it.
type Aggregator struct {
	entries map[string]*cind.CindSet
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]*cind.CindSet)}
}

// Feed merges one record. The record's reference slice is not retained.
func (a *Aggregator) Feed(cs *cind.CindSet) {
	key := cs.AggKey()
	entry, ok := a.entries[key]
	if !ok {
		refs := make([]condition.Condition, len(cs.Refs))
		copy(refs, cs.Refs)
		a.entries[key] = &cind.CindSet{
			Code:   cs.Code,
			Value1: cs.Value1,
			Value2: cs.Value2,
			Count:  cs.Count,
			Refs:   refs,
		}
		return
	}
	entry.Count += cs.Count
	entry.Refs = intersectOrdered(entry.Refs, cs.Refs)
}

// Results returns the candidates seen in at least minSupport join
// lines that still have a non-empty reference list, ordered by
// dependent condition.
func (a *Aggregator) Results(minSupport uint32) []*cind.CindSet {
	out := make([]*cind.CindSet, 0, len(a.entries))
	for _, entry := range a.entries {
		if entry.Count >= minSupport && len(entry.Refs) > 0 {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Dependent().Less(out[j].Dependent())
	})
	return out
}

// intersectOrdered merges two slices sorted by the condition total
// order, keeping only common elements. The result reuses a's backing
// array.
func intersectOrdered(a, b []condition.Condition) []condition.Condition {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch r := a[i].Compare(b[j]); {
		case r < 0:
			i++
		case r > 0:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
