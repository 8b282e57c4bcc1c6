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
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Builder assembles one CindSet per owned dependent condition. The
// scratch buffer is worker-local and reused across calls; the emitted
// record always gets its own copy of the reference list.
type Builder struct {
	rules    *RuleIndex
	useRules bool

	scratch []condition.Condition
}

func NewBuilder(cfg *Config, rules *RuleIndex) *Builder {
	return &Builder{
		rules:    rules,
		useRules: cfg.UseAssociationRules && rules != nil,
	}
}

// Build collects every condition of the join line that is neither
// implied by the dependent nor equal to its association-rule-implied
// counterpart, in set order, and emits one record with count 1.
func (b *Builder) Build(all []condition.Condition, dependent condition.Condition) *CindSet {
	b.scratch = b.scratch[:0]

	var implied condition.Condition
	var hasImplied bool
	if b.useRules {
		implied, hasImplied = b.rules.Lookup(dependent)
	}

	for _, ref := range all {
		if dependent.Implies(ref) {
			continue
		}
		if hasImplied && ref == implied {
			continue
		}
		b.scratch = append(b.scratch, ref)
	}

	refs := make([]condition.Condition, len(b.scratch))
	copy(refs, b.scratch)

	return &CindSet{
		Code:   dependent.Code,
		Value1: dependent.Value1,
		Value2: dependent.Value2,
		Count:  1,
		Refs:   refs,
	}
}
