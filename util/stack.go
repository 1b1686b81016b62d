package util

// Stack is a LIFO of values. The zero value is empty and ready to use.
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes the top item. The zero value is returned for an empty stack.
func (s *Stack[T]) Pop() T {
	var top T
	if n := len(s.items); n > 0 {
		top, s.items = s.items[n-1], s.items[:n-1]
	}
	return top
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}
