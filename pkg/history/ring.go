// Package history provides bounded in-memory event logs and the sink
// interface used to hand events to an external recorder.
package history

// Sink receives events a component wants to publish. Implementations decide
// whether to persist, count or drop them.
type Sink interface {
	Record(event any)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event any)

// Record calls f(event).
func (f SinkFunc) Record(event any) { f(event) }

// Ring keeps the most recent entries up to a fixed capacity.
// It is not safe for concurrent use.
type Ring[T any] struct {
	items []T
	next  int
	full  bool
	total int
}

// NewRing creates a ring holding at most limit entries. A limit below one is
// treated as one.
func NewRing[T any](limit int) *Ring[T] {
	if limit < 1 {
		limit = 1
	}
	return &Ring[T]{items: make([]T, limit)}
}

// Add appends an entry, evicting the oldest one when full.
func (r *Ring[T]) Add(item T) {
	r.items[r.next] = item
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

// Items returns the retained entries, oldest first.
func (r *Ring[T]) Items() []T {
	if !r.full {
		out := make([]T, r.next)
		copy(out, r.items[:r.next])
		return out
	}
	out := make([]T, 0, len(r.items))
	out = append(out, r.items[r.next:]...)
	out = append(out, r.items[:r.next]...)
	return out
}

// Len returns the number of retained entries.
func (r *Ring[T]) Len() int {
	if r.full {
		return len(r.items)
	}
	return r.next
}

// Total returns how many entries were ever added, including evicted ones.
func (r *Ring[T]) Total() int {
	return r.total
}

// Last returns the most recent entry.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.Len() == 0 {
		return zero, false
	}
	idx := (r.next - 1 + len(r.items)) % len(r.items)
	return r.items[idx], true
}
