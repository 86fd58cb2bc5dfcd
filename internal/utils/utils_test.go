package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchBufferFillsToCapacity(t *testing.T) {
	b := NewBatchBuffer[int](3)

	assert.False(t, b.Add(1))
	assert.False(t, b.Add(2))
	assert.True(t, b.Add(3))
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBufferDefaultCapacity(t *testing.T) {
	b := NewBatchBuffer[string](0)

	items := make([]string, BATCH_SIZE)
	assert.True(t, b.Add(items...))
}

func TestBatchBufferConcurrentAdds(t *testing.T) {
	b := NewBatchBuffer[int](1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Add(n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, b.GetAndClear(), 50)
}

func TestDeserializeFromJSON(t *testing.T) {
	var out map[string]int

	require.NoError(t, DeserializeFromJSON([]byte(`{"a":1}`), &out))
	assert.Equal(t, 1, out["a"])
	assert.Error(t, DeserializeFromJSON([]byte(`{`), &out))
}
