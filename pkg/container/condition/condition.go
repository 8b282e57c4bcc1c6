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
	"fmt"
	"strings"

	"github.com/sodaplab/rdfind/pkg/encoding"
)

// Condition is a value restriction observed for one (unary) or two
// (binary) attributes. Value2 is empty for unary codes; the code is
// authoritative for whether a second value exists. Conditions are
// built fresh per join line and never mutated.
type Condition struct {
	Code   Code
	Value1 string
	Value2 string
}

// Compare orders conditions by (Code, Value1, Value2). This is the
// total order all condition sets iterate in.
func (c Condition) Compare(o Condition) int {
	if c.Code != o.Code {
		if c.Code < o.Code {
			return -1
		}
		return 1
	}
	if r := strings.Compare(c.Value1, o.Value1); r != 0 {
		return r
	}
	return strings.Compare(c.Value2, o.Value2)
}

func (c Condition) Less(o Condition) bool {
	return c.Compare(o) < 0
}

// Split decomposes a binary condition into its two unary constituents:
// each primary attribute keeps the shared secondary attribute and its
// own value.
func (c Condition) Split() (first, second Condition, err error) {
	primaryA, primaryB, secondary, err := Decode(c.Code, true)
	if err != nil {
		return Condition{}, Condition{}, err
	}
	codeA, err := EncodeUnary(primaryA, secondary)
	if err != nil {
		return Condition{}, Condition{}, err
	}
	codeB, err := EncodeUnary(primaryB, secondary)
	if err != nil {
		return Condition{}, Condition{}, err
	}
	return Condition{Code: codeA, Value1: c.Value1},
		Condition{Code: codeB, Value1: c.Value2}, nil
}

// Implies reports whether this condition's restriction subsumes o.
// Every condition implies itself, and a binary condition implies the
// two unary conditions it splits into. Codes reaching here were
// already decoded once during capture, so a split cannot fail.
func (c Condition) Implies(o Condition) bool {
	if c == o {
		return true
	}
	if !c.Code.IsBinary() || !o.Code.IsUnary() {
		return false
	}
	first, second, err := c.Split()
	if err != nil {
		return false
	}
	return first == o || second == o
}

// Key is the canonical byte form of the condition, used as the bloom
// filter and hash partition key.
func (c Condition) Key() []byte {
	buf := make([]byte, 0, 8+len(c.Value1)+len(c.Value2))
	buf = append(buf, encoding.EncodeInt32(int32(c.Code))...)
	buf = encoding.AppendSizedString(buf, c.Value1)
	buf = append(buf, c.Value2...)
	return buf
}

func (c Condition) String() string {
	if c.Code.IsBinary() {
		return fmt.Sprintf("cond(%d: %q, %q)", c.Code, c.Value1, c.Value2)
	}
	return fmt.Sprintf("cond(%d: %q)", c.Code, c.Value1)
}
