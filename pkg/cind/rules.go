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

// RuleIndex maps a condition to the single condition implied by a
// strong association rule mined upstream. Read-only during candidate
// extraction; candidates already explained by a rule are skipped.
type RuleIndex struct {
	rules map[condition.Condition]condition.Condition
}

func NewRuleIndex() *RuleIndex {
	return &RuleIndex{rules: make(map[condition.Condition]condition.Condition)}
}

// Add registers antecedent -> implied. A later Add for the same
// antecedent replaces the rule.
func (r *RuleIndex) Add(antecedent, implied condition.Condition) {
	r.rules[antecedent] = implied
}

func (r *RuleIndex) Lookup(c condition.Condition) (condition.Condition, bool) {
	implied, ok := r.rules[c]
	return implied, ok
}

func (r *RuleIndex) Len() int {
	return len(r.rules)
}
