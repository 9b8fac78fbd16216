package domain

// RecencyList is a fixed-capacity list ordered newest first.
// Pushing past capacity evicts the oldest inserted entry; reading an
// entry does not move it.
type RecencyList[T any] struct {
	capacity int
	items    []T
}

// NewRecencyList creates a list holding at most capacity entries
func NewRecencyList[T any](capacity int) *RecencyList[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RecencyList[T]{
		capacity: capacity,
		items:    make([]T, 0, capacity),
	}
}

// Push inserts item as the newest entry. When the list was full the
// oldest entry is removed and returned with true.
func (l *RecencyList[T]) Push(item T) (evicted T, ok bool) {
	if len(l.items) == l.capacity {
		evicted = l.items[len(l.items)-1]
		l.items = l.items[:len(l.items)-1]
		ok = true
	}
	l.items = append(l.items, item)
	copy(l.items[1:], l.items[:len(l.items)-1])
	l.items[0] = item
	return evicted, ok
}

// Remove deletes the entry at index and returns it
func (l *RecencyList[T]) Remove(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(l.items) {
		return zero, false
	}
	item := l.items[index]
	l.items = append(l.items[:index], l.items[index+1:]...)
	return item, true
}

// At returns the entry at index (0 is the newest)
func (l *RecencyList[T]) At(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(l.items) {
		return zero, false
	}
	return l.items[index], true
}

// Items returns a copy of the entries, newest first
func (l *RecencyList[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Len returns the number of entries
func (l *RecencyList[T]) Len() int {
	return len(l.items)
}

// Capacity returns the maximum number of entries
func (l *RecencyList[T]) Capacity() int {
	return l.capacity
}
