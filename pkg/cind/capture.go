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
	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Collector builds the unary and binary condition sets of a join line,
// applying the frequent-capture filter.
type Collector struct {
	cfg       *Config
	broadcast *Broadcast
}

func NewCollector(cfg *Config, broadcast *Broadcast) *Collector {
	return &Collector{cfg: cfg, broadcast: broadcast}
}

// isFrequentCapture reports whether cond passed the frequency
// threshold upstream. With the filter feature disabled it always
// passes. A missing broadcast entry for the condition's code is a
// configuration error, not a miss.
func (c *Collector) isFrequentCapture(cond condition.Condition) (bool, error) {
	if !c.cfg.UseFrequentConditionsFilter {
		return true, nil
	}
	f, ok := c.broadcast.ConditionFilter(cond.Code)
	if !ok {
		return false, rderr.NewMissingFrequencyFilterNoCtx(int32(cond.Code))
	}
	return f.Test(cond.Key()), nil
}

// mightContainBinaryCapture is the second gate on binary captures: the
// type-specific broadcast filter. Consulted only when both the filter
// feature and the binary-captures filter are enabled.
func (c *Collector) mightContainBinaryCapture(cond condition.Condition) (bool, error) {
	if !c.cfg.UseFrequentConditionsFilter || !c.cfg.UseFrequentCapturesBloomFilter {
		return true, nil
	}
	f, ok := c.broadcast.BinaryCaptureFilter(cond.Code)
	if !ok {
		return false, rderr.NewMissingFrequencyFilterNoCtx(int32(cond.Code))
	}
	return f.Test(cond.Key()), nil
}

// Collect derives the unary and binary condition sets of a join line.
//
// Unary captures are included iff they pass the frequency filter.
// Each binary capture contributes up to three conditions: the two
// unary conditions it splits into (both gated by the frequency verdict
// of the original binary condition, evaluated once) and the binary
// condition itself, which must additionally pass the type-specific
// binary-captures filter.
func (c *Collector) Collect(line *JoinLine) (unary, binary *condition.Set, err error) {
	unary = condition.NewSet()
	binary = condition.NewSet()

	for _, uc := range line.Unary {
		cond := condition.Condition{Code: uc.Code, Value1: uc.Value}
		frequent, ferr := c.isFrequentCapture(cond)
		if ferr != nil {
			return nil, nil, ferr
		}
		if frequent {
			unary.Insert(cond)
		}
	}

	for _, bc := range line.Binary {
		cond := condition.Condition{Code: bc.Code, Value1: bc.Value1, Value2: bc.Value2}

		// Frequency is tracked at binary granularity; the verdict is
		// not re-evaluated for the derived unary captures.
		frequent, ferr := c.isFrequentCapture(cond)
		if ferr != nil {
			return nil, nil, ferr
		}
		if !frequent {
			continue
		}

		first, second, serr := cond.Split()
		if serr != nil {
			return nil, nil, serr
		}
		unary.Insert(first)
		unary.Insert(second)

		mightContain, merr := c.mightContainBinaryCapture(cond)
		if merr != nil {
			return nil, nil, merr
		}
		if mightContain {
			binary.Insert(cond)
		}
	}

	return unary, binary, nil
}
