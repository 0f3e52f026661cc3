package orderedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/internal/orderedmap"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := orderedmap.New[int]()
	m.Append("b", 2)
	m.Append("a", 1)
	m.Append("c", 3)

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, []int{2, 1, 3}, m.Values())
	assert.Equal(t, 3, m.Len())
}

func TestMapGet(t *testing.T) {
	m := orderedmap.New[string]()
	m.Append("x", "hello")

	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMapGetIndexAndAt(t *testing.T) {
	m := orderedmap.New[string]()
	m.Append("first", "a")
	m.Append("second", "b")

	idx, ok := m.GetIndex("second")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", m.At(idx))

	m.SetAt(idx, "b-updated")
	assert.Equal(t, "b-updated", m.At(idx))
}

func TestMapSetOverwritesByName(t *testing.T) {
	m := orderedmap.New[int]()
	m.Append("k", 1)
	m.Set("k", 99)

	v, _ := m.Get("k")
	assert.Equal(t, 99, v)
	assert.Equal(t, 1, m.Len())
}
