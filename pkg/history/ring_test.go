package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingKeepsMostRecent(t *testing.T) {
	r := NewRing[int](3)
	assert.Empty(t, r.Items())
	_, ok := r.Last()
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		r.Add(i)
	}

	assert.Equal(t, []int{3, 4, 5}, r.Items())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5, r.Total())
	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 5, last)
}

func TestRingPartiallyFilled(t *testing.T) {
	r := NewRing[string](4)
	r.Add("a")
	r.Add("b")

	assert.Equal(t, []string{"a", "b"}, r.Items())
	assert.Equal(t, 2, r.Len())
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	r.Add(1)
	r.Add(2)
	assert.Equal(t, []int{2}, r.Items())
}

func TestSinkFunc(t *testing.T) {
	var got []any
	var sink Sink = SinkFunc(func(event any) { got = append(got, event) })
	sink.Record("x")
	assert.Equal(t, []any{"x"}, got)
}
