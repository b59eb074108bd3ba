package csync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_ConcurrentSet(t *testing.T) {
	m := NewMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set(i, i*i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, m.Len())
	v, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, 49, v)

	snap := m.Snapshot()
	m.Delete(7)
	assert.Contains(t, snap, 7)
	_, ok = m.Get(7)
	assert.False(t, ok)

	m.Clear()
	assert.Zero(t, m.Len())
}

func TestSlice_ToSliceIsCopy(t *testing.T) {
	s := NewSlice[string]()
	s.Append("a", "b")

	out := s.ToSlice()
	out[0] = "z"

	assert.Equal(t, []string{"a", "b"}, s.ToSlice())
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.ToSlice())
}
