package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecencyList_EvictsOldestInserted(t *testing.T) {
	list := NewRecencyList[string](3)

	for _, s := range []string{"a", "b", "c"} {
		_, evicted := list.Push(s)
		assert.False(t, evicted)
	}

	old, evicted := list.Push("d")
	assert.True(t, evicted)
	assert.Equal(t, "a", old)
	assert.Equal(t, []string{"d", "c", "b"}, list.Items())
	assert.Equal(t, 3, list.Len())
}

func TestRecencyList_AccessDoesNotPromote(t *testing.T) {
	list := NewRecencyList[int](2)
	list.Push(1)
	list.Push(2)

	first, ok := list.At(1)
	assert.True(t, ok)
	assert.Equal(t, 1, first)

	old, evicted := list.Push(3)
	assert.True(t, evicted)
	assert.Equal(t, 1, old, "reading an entry must not protect it from eviction")
}

func TestRecencyList_Remove(t *testing.T) {
	list := NewRecencyList[string](5)
	list.Push("a")
	list.Push("b")
	list.Push("c")

	removed, ok := list.Remove(1)
	assert.True(t, ok)
	assert.Equal(t, "b", removed)
	assert.Equal(t, []string{"c", "a"}, list.Items())

	_, ok = list.Remove(7)
	assert.False(t, ok)
}

func TestRecencyList_CapacityPlusOne(t *testing.T) {
	const capacity = 10
	list := NewRecencyList[int](capacity)
	for i := 0; i <= capacity; i++ {
		list.Push(i)
	}

	items := list.Items()
	assert.Len(t, items, capacity)
	assert.Equal(t, capacity, items[0])
	assert.NotContains(t, items, 0)
}
