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

// rdfind profiles CSV datasets for conditional inclusion dependency
// candidates: rows are grouped into join lines by the configured join
// column, a frequency pass fills the broadcast bloom filters, and the
// extraction engine emits and aggregates the candidate records.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/sodaplab/rdfind/pkg/cind"
	"github.com/sodaplab/rdfind/pkg/engine"
	"github.com/sodaplab/rdfind/pkg/logutil"
)

// Config is the job configuration file.
type Config struct {
	Log       logutil.LogConfig         `toml:"log"`
	Job       cind.Config               `toml:"job"`
	Engine    engine.Options            `toml:"engine"`
	Frequency cind.FilterBuilderOptions `toml:"frequency"`

	// JoinColumn is the zero-based index of the column rows are
	// grouped by; it is also the conditioning attribute of every
	// derived condition. All input files must share one schema.
	JoinColumn int `toml:"join-column"`
}

func (c *Config) SetDefault() {
	c.Log.SetDefault()
	c.Job.SetDefault()
	c.Engine.SetDefault()
	c.Frequency.SetDefault()
}

var (
	configFile = flag.String("config", "", "job configuration file (toml)")
	outputFile = flag.String("output", "cindsets.csv.lz4", "result file")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rdfind [-config job.toml] [-output file] input.csv...")
		os.Exit(2)
	}

	var cfg Config
	if *configFile != "" {
		if _, err := toml.DecodeFile(*configFile, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "parse config %s: %v\n", *configFile, err)
			os.Exit(2)
		}
	}
	cfg.SetDefault()
	logutil.SetupLogger(&cfg.Log)

	if err := run(context.Background(), &cfg, flag.Args()); err != nil {
		logutil.Fatal("job failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *Config, inputs []string) error {
	programStart := time.Now()

	lines, err := loadJoinLines(ctx, inputs, int32(cfg.JoinColumn))
	if err != nil {
		return err
	}
	loadDone := time.Now()
	logutil.Info("loaded join lines",
		zap.Int("files", len(inputs)),
		zap.Int("joinLines", len(lines)),
		zap.Duration("runtime", loadDone.Sub(programStart)))

	fb := cind.NewFilterBuilder(cfg.Frequency)
	for _, line := range lines {
		fb.Observe(line)
	}
	broadcast := fb.Build()
	freqDone := time.Now()
	logutil.Info("finished frequency pass",
		zap.Duration("runtime", freqDone.Sub(loadDone)))

	// Association rules are mined by a separate job; without a mined
	// index the exclusion feature has nothing to apply.
	rules := cind.NewRuleIndex()

	agg := engine.NewAggregator()
	eng := engine.New(cfg.Engine)
	if err := eng.Run(ctx, &cfg.Job, broadcast, rules, lines, func(cs *cind.CindSet) error {
		agg.Feed(cs)
		return nil
	}); err != nil {
		return err
	}

	results := agg.Results(cfg.Frequency.MinSupport)
	if err := writeResults(*outputFile, results); err != nil {
		return err
	}
	logutil.Info("wrote results",
		zap.String("file", *outputFile),
		zap.Int("candidates", len(results)),
		zap.Duration("overall", time.Since(programStart)))
	return nil
}
