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

// Package cind implements per-join-line candidate extraction for
// conditional inclusion dependencies: capture collection with
// frequency-based pruning, association-rule implication pruning, and
// the partition strategies that slice the dependent-by-referenced
// cross product across workers.
package cind

import (
	"bytes"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
	"github.com/sodaplab/rdfind/pkg/encoding"
)

// Config is the candidate extraction configuration. It is fixed for
// the lifetime of a job run.
type Config struct {
	// UseFrequentConditionsFilter prunes captures whose support is
	// below the frequency threshold, via the broadcast bloom filters.
	UseFrequentConditionsFilter bool `toml:"use-frequent-conditions-filter"`

	// UseAssociationRules excludes referenced conditions already
	// implied by a mined association rule.
	UseAssociationRules bool `toml:"use-association-rules"`

	// SplitStrategy selects how dependents are partitioned across
	// workers: 1 = hash-based, 2 = range-based.
	SplitStrategy int `toml:"split-strategy"`

	// UseFrequentCapturesBloomFilter makes binary captures consult the
	// type-specific broadcast filter in addition to the general one.
	UseFrequentCapturesBloomFilter bool `toml:"use-frequent-captures-bloom-filter"`
}

func (c *Config) SetDefault() {
	if c.SplitStrategy == 0 {
		c.SplitStrategy = int(SplitHash)
	}
}

// UnaryCapture is a raw (attribute = value) observation of a join line.
type UnaryCapture struct {
	Code  condition.Code
	Value string
}

// BinaryCapture is a raw attribute-pair observation of a join line.
type BinaryCapture struct {
	Code   condition.Code
	Value1 string
	Value2 string
}

// JoinLine is the unit of work: one bucket of rows sharing a join key.
// It is produced by the surrounding engine and read-only here.
type JoinLine struct {
	// Key is the join key value; the hash split strategy derives
	// ownership from it.
	Key string

	Unary  []UnaryCapture
	Binary []BinaryCapture
}

// CindSet is one emitted candidate: a dependent condition plus the
// referenced conditions that are locally consistent with it in one
// join line. Count is always 1 at extraction time; aggregation sums it.
type CindSet struct {
	Code   condition.Code
	Value1 string
	Value2 string
	Count  uint32
	Refs   []condition.Condition
}

// Dependent returns the dependent condition of the record.
func (cs *CindSet) Dependent() condition.Condition {
	return condition.Condition{Code: cs.Code, Value1: cs.Value1, Value2: cs.Value2}
}

// AggKey is the aggregation key: the canonical bytes of the dependent.
func (cs *CindSet) AggKey() string {
	return string(cs.Dependent().Key())
}

// Marshal encodes the record for hand-off to the aggregation stage.
// Encoding format:
//
//	[code:int32][value1][value2][count:uint32][nrefs:uint32]
//	then per reference: [code:int32][value1][value2]
//
// where strings are uint32-length-prefixed.
func (cs *CindSet) Marshal() []byte {
	var buf bytes.Buffer
	buf.Write(encoding.EncodeInt32(int32(cs.Code)))
	buf.Write(encoding.AppendSizedString(nil, cs.Value1))
	buf.Write(encoding.AppendSizedString(nil, cs.Value2))
	buf.Write(encoding.EncodeUint32(cs.Count))
	buf.Write(encoding.EncodeUint32(uint32(len(cs.Refs))))
	for _, ref := range cs.Refs {
		buf.Write(encoding.EncodeInt32(int32(ref.Code)))
		buf.Write(encoding.AppendSizedString(nil, ref.Value1))
		buf.Write(encoding.AppendSizedString(nil, ref.Value2))
	}
	return buf.Bytes()
}

// Unmarshal restores a record from its Marshal form.
func (cs *CindSet) Unmarshal(data []byte) error {
	var ok bool
	if len(data) < 4 {
		return rderr.NewShortRecordNoCtx("cindset header")
	}
	cs.Code = condition.Code(encoding.DecodeInt32(data[:4]))
	data = data[4:]
	if cs.Value1, data, ok = encoding.DecodeSizedString(data); !ok {
		return rderr.NewShortRecordNoCtx("cindset value1")
	}
	if cs.Value2, data, ok = encoding.DecodeSizedString(data); !ok {
		return rderr.NewShortRecordNoCtx("cindset value2")
	}
	if len(data) < 8 {
		return rderr.NewShortRecordNoCtx("cindset counts")
	}
	cs.Count = encoding.DecodeUint32(data[:4])
	nrefs := int(encoding.DecodeUint32(data[4:8]))
	data = data[8:]

	// A reference takes at least 12 bytes; a count the remaining
	// payload cannot hold is corruption, not an allocation request.
	if nrefs > len(data)/12 {
		return rderr.NewShortRecordNoCtx("cindset claims %d references in %d bytes", nrefs, len(data))
	}

	cs.Refs = make([]condition.Condition, 0, nrefs)
	for i := 0; i < nrefs; i++ {
		var ref condition.Condition
		if len(data) < 4 {
			return rderr.NewShortRecordNoCtx("cindset reference %d", i)
		}
		ref.Code = condition.Code(encoding.DecodeInt32(data[:4]))
		data = data[4:]
		if ref.Value1, data, ok = encoding.DecodeSizedString(data); !ok {
			return rderr.NewShortRecordNoCtx("cindset reference %d", i)
		}
		if ref.Value2, data, ok = encoding.DecodeSizedString(data); !ok {
			return rderr.NewShortRecordNoCtx("cindset reference %d", i)
		}
		cs.Refs = append(cs.Refs, ref)
	}
	if len(data) != 0 {
		return rderr.NewInvalidInputNoCtx("trailing bytes after cindset record")
	}
	return nil
}
