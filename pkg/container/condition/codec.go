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
	"github.com/sodaplab/rdfind/pkg/common/rderr"
)

// Code identifies the attribute roles of a condition. It packs up to
// three attribute ids into one int32:
//
//	bits  0..9  secondary (conditioning) attribute id + 1, 0 = absent
//	bits 10..19 second primary attribute id + 1, 0 = absent (unary)
//	bits 20..29 first primary attribute id + 1, never 0
//	bits 30..31 reserved, must be 0
//
// Attribute ids are stored shifted by one so that an all-zero slot
// means "absent" and the zero Code is never valid.
type Code int32

// NoAttribute marks an absent attribute slot.
const NoAttribute int32 = -1

const (
	attrBits = 10
	attrMask = int32(1)<<attrBits - 1

	// MaxAttribute is the largest encodable attribute id.
	MaxAttribute = attrMask - 1

	secondaryShift = 0
	primaryBShift  = attrBits
	primaryAShift  = 2 * attrBits
)

func encodeSlot(attr int32) int32 {
	return attr + 1
}

func validAttr(attr int32) bool {
	return attr >= 0 && attr <= MaxAttribute
}

// EncodeUnary packs a unary condition code. secondary may be NoAttribute.
func EncodeUnary(primary, secondary int32) (Code, error) {
	if !validAttr(primary) {
		return 0, rderr.NewInvalidInputNoCtx("primary attribute %d out of range", primary)
	}
	if secondary != NoAttribute && !validAttr(secondary) {
		return 0, rderr.NewInvalidInputNoCtx("secondary attribute %d out of range", secondary)
	}
	c := encodeSlot(primary) << primaryAShift
	if secondary != NoAttribute {
		c |= encodeSlot(secondary) << secondaryShift
	}
	return Code(c), nil
}

// EncodeBinary packs a two-primary condition code.
func EncodeBinary(primaryA, primaryB, secondary int32) (Code, error) {
	if !validAttr(primaryA) {
		return 0, rderr.NewInvalidInputNoCtx("primary attribute %d out of range", primaryA)
	}
	if !validAttr(primaryB) {
		return 0, rderr.NewInvalidInputNoCtx("primary attribute %d out of range", primaryB)
	}
	if secondary != NoAttribute && !validAttr(secondary) {
		return 0, rderr.NewInvalidInputNoCtx("secondary attribute %d out of range", secondary)
	}
	c := encodeSlot(primaryA)<<primaryAShift | encodeSlot(primaryB)<<primaryBShift
	if secondary != NoAttribute {
		c |= encodeSlot(secondary) << secondaryShift
	}
	return Code(c), nil
}

// Decode unpacks a condition code. Absent slots come back as
// NoAttribute. requireDoubleCode asserts that the caller expects a
// binary decomposition, as when splitting a binary condition into its
// two unary constituents. An invalid code is always an error, never a
// silent default.
func Decode(code Code, requireDoubleCode bool) (primaryA, primaryB, secondary int32, err error) {
	c := int32(code)
	if c < 0 || c>>(3*attrBits) != 0 {
		return 0, 0, 0, rderr.NewMalformedConditionCodeNoCtx("reserved bits set in %d", c)
	}
	slotA := c >> primaryAShift & attrMask
	slotB := c >> primaryBShift & attrMask
	slotS := c >> secondaryShift & attrMask
	if slotA == 0 {
		return 0, 0, 0, rderr.NewMalformedConditionCodeNoCtx("empty primary slot in %d", c)
	}
	if requireDoubleCode && slotB == 0 {
		return 0, 0, 0, rderr.NewMalformedConditionCodeNoCtx("%d is not a double code", c)
	}
	return slotA - 1, slotB - 1, slotS - 1, nil
}

// IsBinary reports whether the second primary slot is populated. It
// does not validate the rest of the code.
func (c Code) IsBinary() bool {
	return int32(c)>>primaryBShift&attrMask != 0
}

func (c Code) IsUnary() bool {
	return !c.IsBinary()
}
