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

package main

import (
	"context"
	"os"
	"sort"

	"github.com/matrixorigin/simdcsv"

	"github.com/sodaplab/rdfind/pkg/cind"
	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/container/condition"
)

// batchReadRows is the row batch handed to the csv parser per call.
const batchReadRows = 4000

// loadJoinLines reads the input files and buckets their rows into join
// lines keyed by the join column. Every other column yields one unary
// capture per row, and every column pair one binary capture, all
// conditioned on the join column. Attribute ids are column indices, so
// the inputs must share one schema.
func loadJoinLines(ctx context.Context, inputs []string, joinCol int32) ([]*cind.JoinLine, error) {
	buckets := make(map[string]*cind.JoinLine)
	for _, path := range inputs {
		if err := loadFile(ctx, path, joinCol, buckets); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]*cind.JoinLine, 0, len(buckets))
	for _, key := range keys {
		lines = append(lines, buckets[key])
	}
	return lines, nil
}

func loadFile(ctx context.Context, path string, joinCol int32, buckets map[string]*cind.JoinLine) error {
	f, err := os.Open(path)
	if err != nil {
		return rderr.ConvertGoError(ctx, err)
	}
	defer f.Close()

	reader := simdcsv.NewReaderWithOptions(f, ',', '#', true, true)
	content := make([][]string, batchReadRows)
	for {
		var cnt int
		content, cnt, err = reader.Read(batchReadRows, ctx, content)
		if err != nil {
			return rderr.ConvertGoError(ctx, err)
		}
		for i := 0; i < cnt; i++ {
			if err := captureRow(content[i], joinCol, buckets); err != nil {
				return err
			}
		}
		if cnt < batchReadRows {
			return nil
		}
	}
}

func captureRow(row []string, joinCol int32, buckets map[string]*cind.JoinLine) error {
	if int(joinCol) >= len(row) {
		return rderr.NewShortRecordNoCtx("row has %d columns, join column is %d", len(row), joinCol)
	}
	key := row[joinCol]
	line, ok := buckets[key]
	if !ok {
		line = &cind.JoinLine{Key: key}
		buckets[key] = line
	}

	for a := 0; a < len(row); a++ {
		if int32(a) == joinCol {
			continue
		}
		code, err := condition.EncodeUnary(int32(a), joinCol)
		if err != nil {
			return err
		}
		line.Unary = append(line.Unary, cind.UnaryCapture{Code: code, Value: row[a]})

		for b := a + 1; b < len(row); b++ {
			if int32(b) == joinCol {
				continue
			}
			code, err := condition.EncodeBinary(int32(a), int32(b), joinCol)
			if err != nil {
				return err
			}
			line.Binary = append(line.Binary, cind.BinaryCapture{
				Code:   code,
				Value1: row[a],
				Value2: row[b],
			})
		}
	}
	return nil
}
