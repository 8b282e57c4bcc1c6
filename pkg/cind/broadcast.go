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
	"github.com/sodaplab/rdfind/pkg/common/bloomfilter"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Broadcast is the read-only frequency filter map distributed to every
// worker before the first join line is processed. It maps a condition
// code to the bloom filter over the frequent conditions of that code;
// a second map backs the type-specific binary-captures filter. It must
// never be mutated once distributed, which is what makes lock-free
// sharing across workers safe.
type Broadcast struct {
	conditions     map[condition.Code]*bloomfilter.BloomFilter
	binaryCaptures map[condition.Code]*bloomfilter.BloomFilter
}

func NewBroadcast() *Broadcast {
	return &Broadcast{
		conditions:     make(map[condition.Code]*bloomfilter.BloomFilter),
		binaryCaptures: make(map[condition.Code]*bloomfilter.BloomFilter),
	}
}

// SetConditionFilter installs the filter for a condition code. Only
// the frequency pass calls this, before distribution.
func (b *Broadcast) SetConditionFilter(code condition.Code, f *bloomfilter.BloomFilter) {
	b.conditions[code] = f
}

func (b *Broadcast) SetBinaryCaptureFilter(code condition.Code, f *bloomfilter.BloomFilter) {
	b.binaryCaptures[code] = f
}

func (b *Broadcast) ConditionFilter(code condition.Code) (*bloomfilter.BloomFilter, bool) {
	f, ok := b.conditions[code]
	return f, ok
}

func (b *Broadcast) BinaryCaptureFilter(code condition.Code) (*bloomfilter.BloomFilter, bool) {
	f, ok := b.binaryCaptures[code]
	return f, ok
}
