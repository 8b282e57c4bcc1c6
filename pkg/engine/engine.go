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

// Package engine is the local stand-in for the distributed execution
// environment: it fans candidate extraction out over a worker pool and
// funnels the emitted records into a single sink.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/sodaplab/rdfind/pkg/cind"
	"github.com/sodaplab/rdfind/pkg/logutil"
)

// DefaultParallelism is used when no degree was configured.
const DefaultParallelism = 10

const outputQueueSize = 1024

type Options struct {
	// Parallelism is the worker count; every worker owns one
	// partition identity of the split strategies.
	Parallelism int `toml:"parallelism"`
}

func (o *Options) SetDefault() {
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
}

// Engine runs candidate extraction over a set of join lines. Every
// worker scans all join lines and emits only the dependents its
// partition identity owns, so the union over workers covers each
// (join line, dependent) pair exactly once.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options) *Engine {
	opts.SetDefault()
	return &Engine{
		opts:   opts,
		logger: logutil.Adjust(nil),
	}
}

// Run extracts candidates from every join line and streams the records
// to sink from a single goroutine, as they are produced. The first
// error cancels the run and is returned.
func (e *Engine) Run(
	ctx context.Context,
	cfg *cind.Config,
	broadcast *cind.Broadcast,
	rules *cind.RuleIndex,
	lines []*cind.JoinLine,
	sink func(*cind.CindSet) error,
) error {
	workers := e.opts.Parallelism

	// Validate configuration before any join line is touched.
	extractors := make([]*cind.Worker, workers)
	for w := 0; w < workers; w++ {
		worker, err := cind.NewWorker(cfg, broadcast, rules, w, workers)
		if err != nil {
			return err
		}
		extractors[w] = worker
	}

	start := time.Now()
	e.logger.Info("run candidate extraction",
		zap.Int("joinLines", len(lines)),
		zap.Int("parallelism", workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	out := make(chan *cind.CindSet, outputQueueSize)
	var emitted int64

	var collectorWG sync.WaitGroup
	collectorWG.Add(1)
	go func() {
		defer collectorWG.Done()
		for cs := range out {
			if err := sink(cs); err != nil {
				fail(err)
				// Keep draining so producers never block forever.
				continue
			}
			atomic.AddInt64(&emitted, 1)
		}
	}()

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		panic(v)
	}))
	if err != nil {
		return err
	}
	defer pool.Release()

	emit := func(cs *cind.CindSet) error {
		select {
		case out <- cs:
			return nil
		case <-runCtx.Done():
			return runCtx.Err()
		}
	}

	var producerWG sync.WaitGroup
	for w := 0; w < workers; w++ {
		worker := extractors[w]
		producerWG.Add(1)
		submitErr := pool.Submit(func() {
			defer producerWG.Done()
			for _, line := range lines {
				select {
				case <-runCtx.Done():
					return
				default:
				}
				if err := worker.ProcessJoinLine(runCtx, line, emit); err != nil {
					fail(err)
					return
				}
			}
		})
		if submitErr != nil {
			producerWG.Done()
			fail(submitErr)
			break
		}
	}

	producerWG.Wait()
	close(out)
	collectorWG.Wait()

	mu.Lock()
	err = firstErr
	mu.Unlock()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		e.logger.Error("candidate extraction failed",
			zap.Duration("runtime", time.Since(start)),
			zap.Error(err))
		return err
	}
	e.logger.Info("finished candidate extraction",
		zap.Duration("runtime", time.Since(start)),
		zap.Int64("records", atomic.LoadInt64(&emitted)))
	return nil
}
