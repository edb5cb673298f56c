package expr

import "github.com/lemonberrylabs/calc/pkg/types"

// StackCapacity bounds the operands pending at any point of an evaluation.
// It is a hard ceiling: exceeding it is a StackOverflow, never a resize.
const StackCapacity = 32

// Stack is the fixed-capacity evaluation stack.
type Stack struct {
	items [StackCapacity]int64
	top   int
}

// Push pushes v, failing with StackOverflow when the stack is full.
func (s *Stack) Push(v int64) error {
	if s.IsFull() {
		return types.NewStackOverflowError()
	}
	s.items[s.top] = v
	s.top++
	return nil
}

// Pop removes and returns the top value, failing with StackUnderflow when
// the stack is empty.
func (s *Stack) Pop() (int64, error) {
	if s.IsEmpty() {
		return 0, types.NewStackUnderflowError()
	}
	s.top--
	return s.items[s.top], nil
}

// IsFull reports whether another Push would overflow.
func (s *Stack) IsFull() bool { return s.top == StackCapacity }

// IsEmpty reports whether the stack holds no values.
func (s *Stack) IsEmpty() bool { return s.top == 0 }

// Len returns the number of values on the stack.
func (s *Stack) Len() int { return s.top }

// Clear empties the stack.
func (s *Stack) Clear() {
	s.items = [StackCapacity]int64{}
	s.top = 0
}
