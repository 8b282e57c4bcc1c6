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
	"context"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// Worker runs candidate extraction for one partition identity. It is
// not safe for concurrent use: the builder's scratch buffer is shared
// across calls. The engine gives each partition identity its own
// Worker.
type Worker struct {
	cfg       *Config
	collector *Collector
	part      *Partitioner
	builder   *Builder
}

// NewWorker validates the configuration and builds a worker for
// partition identity worker of workers. Configuration errors
// (unsupported split strategy, bad partition identity) surface here,
// before any join line is touched.
func NewWorker(cfg *Config, broadcast *Broadcast, rules *RuleIndex, worker, workers int) (*Worker, error) {
	strategy, err := ParseSplitStrategy(cfg.SplitStrategy)
	if err != nil {
		return nil, err
	}
	part, err := NewPartitioner(strategy, worker, workers)
	if err != nil {
		return nil, err
	}
	return &Worker{
		cfg:       cfg,
		collector: NewCollector(cfg, broadcast),
		part:      part,
		builder:   NewBuilder(cfg, rules),
	}, nil
}

// ProcessJoinLine extracts this worker's candidates from one join
// line and streams them to emit as they are produced. The call is
// pure and idempotent: re-running the same join line reproduces
// identical output.
func (w *Worker) ProcessJoinLine(ctx context.Context, line *JoinLine, emit func(*CindSet) error) error {
	unary, binary, err := w.collector.Collect(line)
	if err != nil {
		return err
	}

	combined := unary
	combined.Merge(binary)
	all := combined.Slice()

	owned, err := w.part.OwnedDependents(line, all)
	if err != nil {
		return err
	}

	for _, dependent := range owned {
		if err := emit(w.builder.Build(all, dependent)); err != nil {
			return err
		}
	}
	return nil
}

// CollectCandidates is the legacy entry point that takes a bare
// condition set without a join line. It is unreachable from this
// pipeline; a caller landing here violates the contract.
func (w *Worker) CollectCandidates(conditions *condition.Set) error {
	return rderr.NewNYINoCtx("candidate collection without a join line")
}
