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

// Package bloomfilter implements the probabilistic membership filter
// distributed to every worker before candidate extraction. Filters are
// write-once: they are filled by the frequency pass and only tested
// afterwards, so shared read access needs no locking.
package bloomfilter

import (
	"bytes"
	"math"
	"math/rand"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
	"github.com/sodaplab/rdfind/pkg/encoding"
)

const (
	minNbits = 64
	// Bit positions are stored as uint32.
	maxNbits = uint64(1) << 32
)

type BloomFilter struct {
	nbits uint64
	k     uint32
	seed  uint64

	bits *roaring.Bitmap
}

// New creates a filter with nbits bits and k hash functions and a
// random seed. Filters that must agree bit-for-bit across builders
// should use NewWithSeed.
func New(nbits uint64, k uint32) *BloomFilter {
	return NewWithSeed(nbits, k, rand.Uint64())
}

func NewWithSeed(nbits uint64, k uint32, seed uint64) *BloomFilter {
	if nbits < minNbits {
		nbits = minNbits
	}
	if nbits > maxNbits {
		nbits = maxNbits
	}
	if k == 0 {
		k = 1
	}
	return &BloomFilter{
		nbits: nbits,
		k:     k,
		seed:  seed,
		bits:  roaring.New(),
	}
}

// NewWithProbability sizes the filter for an expected n keys at false
// positive rate p.
func NewWithProbability(n int64, p float64) *BloomFilter {
	return NewWithProbabilityAndSeed(n, p, rand.Uint64())
}

// NewWithProbabilityAndSeed is NewWithProbability with a fixed seed,
// for filters that must agree bit-for-bit across builders.
func NewWithProbabilityAndSeed(n int64, p float64, seed uint64) *BloomFilter {
	if n <= 0 {
		n = 1
	}
	ln2 := math.Log(2)
	nbits := uint64(math.Ceil(-float64(n) * math.Log(p) / (ln2 * ln2)))
	k := uint32(math.Ceil(float64(nbits) / float64(n) * ln2))
	return NewWithSeed(nbits, k, seed)
}

func (bf *BloomFilter) Nbits() uint64 { return bf.nbits }
func (bf *BloomFilter) K() uint32     { return bf.k }
func (bf *BloomFilter) Seed() uint64  { return bf.seed }

func (bf *BloomFilter) position(round uint32, key []byte) uint32 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.Write(encoding.EncodeUint64(bf.seed + uint64(round)))
	_, _ = d.Write(key)
	return uint32(d.Sum64() % bf.nbits)
}

func (bf *BloomFilter) Add(key []byte) {
	for i := uint32(0); i < bf.k; i++ {
		bf.bits.Add(bf.position(i, key))
	}
}

// Test reports whether key might be in the filter. False positives are
// possible, false negatives are not.
func (bf *BloomFilter) Test(key []byte) bool {
	for i := uint32(0); i < bf.k; i++ {
		if !bf.bits.Contains(bf.position(i, key)) {
			return false
		}
	}
	return true
}

// TestAndAdd adds key and reports whether it might have been present
// before the add.
func (bf *BloomFilter) TestAndAdd(key []byte) bool {
	exist := true
	for i := uint32(0); i < bf.k; i++ {
		pos := bf.position(i, key)
		if !bf.bits.Contains(pos) {
			bf.bits.Add(pos)
			exist = false
		}
	}
	return exist
}

// Merge ORs another filter into this one. Both filters must have been
// built with the same geometry and seed.
func (bf *BloomFilter) Merge(o *BloomFilter) error {
	if bf.nbits != o.nbits {
		return rderr.NewInvalidInputNoCtx("bloomfilter merge: nbits mismatch %d != %d", bf.nbits, o.nbits)
	}
	if bf.seed != o.seed {
		return rderr.NewInvalidInputNoCtx("bloomfilter merge: seed mismatch")
	}
	if bf.k != o.k {
		return rderr.NewInvalidInputNoCtx("bloomfilter merge: k mismatch %d != %d", bf.k, o.k)
	}
	bf.bits.Or(o.bits)
	return nil
}

// Marshal encodes the filter for broadcast distribution.
// Encoding format:
//
//	[nbits:uint64][k:uint32][seed:uint64][bitsLen:uint32][bits...]
func (bf *BloomFilter) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(encoding.EncodeUint64(bf.nbits))
	buf.Write(encoding.EncodeUint32(bf.k))
	buf.Write(encoding.EncodeUint64(bf.seed))

	bits, err := bf.bits.ToBytes()
	if err != nil {
		return nil, err
	}
	buf.Write(encoding.EncodeUint32(uint32(len(bits))))
	buf.Write(bits)
	return buf.Bytes(), nil
}

// Unmarshal restores a filter from its Marshal form.
func (bf *BloomFilter) Unmarshal(data []byte) error {
	if len(data) < 20 {
		return rderr.NewInternalErrorNoCtx("invalid bloomfilter data")
	}
	nbits := encoding.DecodeUint64(data[:8])
	data = data[8:]
	k := encoding.DecodeUint32(data[:4])
	data = data[4:]
	seed := encoding.DecodeUint64(data[:8])
	data = data[8:]

	if nbits == 0 || k == 0 {
		return rderr.NewInternalErrorNoCtx("invalid bloomfilter geometry")
	}
	if len(data) < 4 {
		return rderr.NewInternalErrorNoCtx("invalid bloomfilter data (no bits length)")
	}
	bitsLen := int(encoding.DecodeUint32(data[:4]))
	data = data[4:]
	if bitsLen < 0 || len(data) < bitsLen {
		return rderr.NewInternalErrorNoCtx("invalid bloomfilter data (bits truncated)")
	}

	bits := roaring.New()
	if err := bits.UnmarshalBinary(data[:bitsLen]); err != nil {
		return rderr.NewInternalErrorNoCtx("invalid bloomfilter bits: %v", err)
	}

	bf.nbits = nbits
	bf.k = k
	bf.seed = seed
	bf.bits = bits
	return nil
}
