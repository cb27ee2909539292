package types

import "sync"

// Iterator is a pull-based lazy sequence. Next returns the next element and
// true, or nil and false once the sequence is exhausted. An exhausted
// iterator keeps returning false.
type Iterator interface {
	Next() (interface{}, bool)
}

// Iterable produces a fresh Iterator on every call, so that the same
// collection can be traversed more than once.
type Iterable interface {
	Iterator() Iterator
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc func() (interface{}, bool)

// Next implements Iterator.
func (f IteratorFunc) Next() (interface{}, bool) {
	return f()
}

// IterableFunc adapts a function to the Iterable interface.
type IterableFunc func() Iterator

// Iterator implements Iterable.
func (f IterableFunc) Iterator() Iterator {
	return f()
}

// Empty is an Iterator with no elements.
var Empty Iterator = IteratorFunc(func() (interface{}, bool) { return nil, false })

// SliceIterator iterates over a slice.
type SliceIterator struct {
	items []interface{}
	pos   int
}

// NewSliceIterator returns an iterator over items.
func NewSliceIterator(items []interface{}) *SliceIterator {
	return &SliceIterator{items: items}
}

// Next implements Iterator.
func (s *SliceIterator) Next() (interface{}, bool) {
	if s.pos >= len(s.items) {
		return nil, false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

// Slice is an Iterable backed by a slice.
type Slice []interface{}

// Iterator implements Iterable.
func (s Slice) Iterator() Iterator {
	return NewSliceIterator(s)
}

// Collect drains it into a slice.
func Collect(it Iterator) []interface{} {
	var out []interface{}
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Repeatable buffers a one-shot iterator so it can be traversed many times.
// Elements are pulled from the underlying iterator only as far as the most
// advanced traversal has reached. Safe for concurrent use.
type Repeatable struct {
	mu     sync.Mutex
	src    Iterator
	buf    []interface{}
	closed bool
}

// NewRepeatable wraps src.
func NewRepeatable(src Iterator) *Repeatable {
	return &Repeatable{src: src}
}

// Iterator implements Iterable.
func (r *Repeatable) Iterator() Iterator {
	pos := 0
	return IteratorFunc(func() (interface{}, bool) {
		v, ok := r.at(pos)
		if ok {
			pos++
		}
		return v, ok
	})
}

func (r *Repeatable) at(pos int) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pos >= len(r.buf) {
		if r.closed {
			return nil, false
		}
		v, ok := r.src.Next()
		if !ok {
			r.closed = true
			r.src = nil
			return nil, false
		}
		r.buf = append(r.buf, v)
	}
	return r.buf[pos], true
}
