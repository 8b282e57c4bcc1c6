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
	"github.com/google/btree"
)

const setDegree = 16

type setItem Condition

func (i setItem) Less(than btree.Item) bool {
	return Condition(i).Less(Condition(than.(setItem)))
}

// Set is an ordered, deduplicating condition container. Iteration
// follows the Condition total order, which makes membership and range
// slicing deterministic across runs.
type Set struct {
	tree *btree.BTree
}

func NewSet() *Set {
	return &Set{tree: btree.New(setDegree)}
}

func (s *Set) Insert(c Condition) {
	s.tree.ReplaceOrInsert(setItem(c))
}

func (s *Set) Contains(c Condition) bool {
	return s.tree.Has(setItem(c))
}

func (s *Set) Len() int {
	return s.tree.Len()
}

// Ascend visits the conditions in order until f returns false.
func (s *Set) Ascend(f func(Condition) bool) {
	s.tree.Ascend(func(i btree.Item) bool {
		return f(Condition(i.(setItem)))
	})
}

// Slice returns the conditions in order. The result is freshly
// allocated and safe to keep.
func (s *Set) Slice() []Condition {
	out := make([]Condition, 0, s.tree.Len())
	s.Ascend(func(c Condition) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Merge inserts every condition of o into s.
func (s *Set) Merge(o *Set) {
	o.Ascend(func(c Condition) bool {
		s.Insert(c)
		return true
	})
}
