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

// Package encoding holds the little-endian primitives shared by the
// record and filter wire formats.
package encoding

import (
	"encoding/binary"
)

func EncodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func DecodeUint32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func DecodeUint64(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data)
}

func EncodeInt32(v int32) []byte {
	return EncodeUint32(uint32(v))
}

func DecodeInt32(data []byte) int32 {
	return int32(DecodeUint32(data))
}

// AppendSizedString appends a uint32 length prefix and the string bytes.
func AppendSizedString(dst []byte, s string) []byte {
	dst = append(dst, EncodeUint32(uint32(len(s)))...)
	return append(dst, s...)
}

// DecodeSizedString reads a length-prefixed string and returns it with
// the remaining bytes. ok is false if data is truncated.
func DecodeSizedString(data []byte) (s string, rest []byte, ok bool) {
	if len(data) < 4 {
		return "", nil, false
	}
	n := int(DecodeUint32(data))
	data = data[4:]
	if n < 0 || len(data) < n {
		return "", nil, false
	}
	return string(data[:n]), data[n:], true
}
