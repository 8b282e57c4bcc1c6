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

package bloomfilter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sodaplab/rdfind/pkg/common/rderr"
)

func TestAddAndTest(t *testing.T) {
	bf := NewWithSeed(1<<16, 4, 42)
	keys := make([][]byte, 100)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key-%d", i))
		bf.Add(keys[i])
	}
	for _, key := range keys {
		require.True(t, bf.Test(key))
	}
}

func TestTestAndAdd(t *testing.T) {
	bf := NewWithSeed(1<<16, 4, 42)
	key := []byte("only-key")
	require.False(t, bf.TestAndAdd(key))
	require.True(t, bf.TestAndAdd(key))
	require.True(t, bf.Test(key))
}

func TestFalsePositiveRate(t *testing.T) {
	bf := NewWithProbabilityAndSeed(10000, 0.01, 7)
	for i := 0; i < 10000; i++ {
		bf.Add([]byte(fmt.Sprintf("present-%d", i)))
	}
	falses := 0
	for i := 0; i < 10000; i++ {
		if bf.Test([]byte(fmt.Sprintf("absent-%d", i))) {
			falses++
		}
	}
	// Allow generous slack over the configured 1%.
	require.Less(t, falses, 500)
}

func TestSeedDeterminism(t *testing.T) {
	a := NewWithProbabilityAndSeed(100, 0.001, 99)
	b := NewWithProbabilityAndSeed(100, 0.001, 99)
	for i := 0; i < 100; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		a.Add(key)
		b.Add(key)
	}
	abuf, err := a.Marshal()
	require.NoError(t, err)
	bbuf, err := b.Marshal()
	require.NoError(t, err)
	require.Equal(t, abuf, bbuf)
}

func TestMarshalUnmarshal(t *testing.T) {
	bf := NewWithSeed(1<<12, 3, 17)
	for i := 0; i < 50; i++ {
		bf.Add([]byte(fmt.Sprintf("key-%d", i)))
	}
	buf, err := bf.Marshal()
	require.NoError(t, err)

	var restored BloomFilter
	require.NoError(t, restored.Unmarshal(buf))
	require.Equal(t, bf.Nbits(), restored.Nbits())
	require.Equal(t, bf.K(), restored.K())
	require.Equal(t, bf.Seed(), restored.Seed())
	for i := 0; i < 50; i++ {
		require.True(t, restored.Test([]byte(fmt.Sprintf("key-%d", i))))
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	bf := NewWithSeed(1<<12, 3, 17)
	bf.Add([]byte("key"))
	buf, err := bf.Marshal()
	require.NoError(t, err)

	var restored BloomFilter
	err = restored.Unmarshal(buf[:10])
	require.True(t, rderr.IsErrCode(err, rderr.ErrInternal))

	err = restored.Unmarshal(buf[:len(buf)-1])
	require.True(t, rderr.IsErrCode(err, rderr.ErrInternal))
}

func TestMerge(t *testing.T) {
	a := NewWithSeed(1<<12, 3, 17)
	b := NewWithSeed(1<<12, 3, 17)
	a.Add([]byte("from-a"))
	b.Add([]byte("from-b"))

	require.NoError(t, a.Merge(b))
	require.True(t, a.Test([]byte("from-a")))
	require.True(t, a.Test([]byte("from-b")))
}

func TestMergeMismatch(t *testing.T) {
	base := NewWithSeed(1<<12, 3, 17)

	err := base.Merge(NewWithSeed(1<<13, 3, 17))
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))

	err = base.Merge(NewWithSeed(1<<12, 4, 17))
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))

	err = base.Merge(NewWithSeed(1<<12, 3, 18))
	require.True(t, rderr.IsErrCode(err, rderr.ErrInvalidInput))
}

func BenchmarkAdd(b *testing.B) {
	bf := NewWithSeed(1<<20, 4, 42)
	key := []byte("benchmark-key")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bf.Add(key)
	}
}

func BenchmarkTest(b *testing.B) {
	bf := NewWithSeed(1<<20, 4, 42)
	bf.Add([]byte("benchmark-key"))
	key := []byte("benchmark-key")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bf.Test(key)
	}
}
