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
	"github.com/cespare/xxhash/v2"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// SplitStrategy selects how the dependents of a join line are divided
// among workers.
type SplitStrategy int

const (
	// SplitHash decides ownership per condition with a deterministic
	// hash over (join line, condition). O(n) hash tests per line, but
	// insensitive to skew since ownership is content-based.
	SplitHash SplitStrategy = 1
	// SplitRange slices a contiguous index range out of the ordered
	// combined set. Cheaper per element, skew-sensitive: boundaries
	// are positional, not content-based.
	SplitRange SplitStrategy = 2
)

// ParseSplitStrategy maps the configured integer to a strategy. Any
// other value is a configuration error, fatal to the job.
func ParseSplitStrategy(v int) (SplitStrategy, error) {
	switch SplitStrategy(v) {
	case SplitHash:
		return SplitHash, nil
	case SplitRange:
		return SplitRange, nil
	default:
		return 0, rderr.NewUnsupportedSplitStrategyNoCtx(v)
	}
}

func (s SplitStrategy) String() string {
	switch s {
	case SplitHash:
		return "hash"
	case SplitRange:
		return "range"
	default:
		return "unknown"
	}
}

// Partitioner selects which conditions of a join line this worker owns
// as dependents. Summed over all workers of a run, every condition is
// owned exactly once per join line.
type Partitioner struct {
	strategy SplitStrategy
	worker   int
	workers  int
}

func NewPartitioner(strategy SplitStrategy, worker, workers int) (*Partitioner, error) {
	if workers < 1 {
		return nil, rderr.NewBadConfigNoCtx("worker count %d < 1", workers)
	}
	if worker < 0 || worker >= workers {
		return nil, rderr.NewBadConfigNoCtx("worker index %d out of [0, %d)", worker, workers)
	}
	if _, err := ParseSplitStrategy(int(strategy)); err != nil {
		return nil, err
	}
	return &Partitioner{strategy: strategy, worker: worker, workers: workers}, nil
}

// OwnedDependents returns the conditions of the ordered combined set
// that this worker processes as dependents for the given join line.
// The range strategy returns a sub-slice of all; callers must not
// mutate it.
func (p *Partitioner) OwnedDependents(line *JoinLine, all []condition.Condition) ([]condition.Condition, error) {
	switch p.strategy {
	case SplitHash:
		owned := make([]condition.Condition, 0, len(all)/p.workers+1)
		for _, c := range all {
			if p.owns(line, c) {
				owned = append(owned, c)
			}
		}
		return owned, nil
	case SplitRange:
		n := len(all)
		from := n * p.worker / p.workers
		until := n * (p.worker + 1) / p.workers
		return all[from:until], nil
	default:
		return nil, rderr.NewUnsupportedSplitStrategyNoCtx(int(p.strategy))
	}
}

func (p *Partitioner) owns(line *JoinLine, c condition.Condition) bool {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(line.Key)
	_, _ = d.Write(c.Key())
	return d.Sum64()%uint64(p.workers) == uint64(p.worker)
}
