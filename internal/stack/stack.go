package stack

import "errors"

// ErrEmpty is returned by Pop and Peek when the stack holds no items.
var ErrEmpty = errors.New("stack: empty")

// Stack is a slice-backed LIFO container. The zero value is ready to use.
type Stack[T any] struct {
	items []T
}

func New[T any]() *Stack[T] {
	return &Stack[T]{items: make([]T, 0, 16)}
}

func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, ErrEmpty
	}

	v := s.items[n-1]
	s.items[n-1] = zero
	s.items = s.items[:n-1]

	return v, nil
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (T, error) {
	n := len(s.items)
	if n == 0 {
		var zero T
		return zero, ErrEmpty
	}

	return s.items[n-1], nil
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
