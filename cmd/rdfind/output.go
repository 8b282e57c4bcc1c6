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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pierrec/lz4"

	"github.com/sodaplab/rdfind/pkg/cind"
)

// writeResults streams the aggregated candidates to path as an
// lz4-compressed csv. One row per candidate:
//
//	code, value1, value2, count, ref...
//
// with each reference rendered as code|value1|value2.
func writeResults(path string, results []*cind.CindSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := lz4.NewWriter(f)
	w := csv.NewWriter(zw)
	for _, cs := range results {
		row := make([]string, 0, 4+len(cs.Refs))
		row = append(row,
			strconv.FormatInt(int64(cs.Code), 10),
			cs.Value1,
			cs.Value2,
			strconv.FormatUint(uint64(cs.Count), 10))
		for _, ref := range cs.Refs {
			row = append(row, fmt.Sprintf("%d|%s|%s", ref.Code, ref.Value1, ref.Value2))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}
