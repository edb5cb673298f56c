package expr

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/calc/pkg/types"
)

// Evaluator walks a tree depth-first, post-order, on its own evaluation
// stack. An Evaluator is not safe for concurrent use; Evaluate allocates a
// fresh one per call.
type Evaluator struct {
	stack Stack
}

// Evaluate evaluates a tree to its integer value.
func Evaluate(node Node) (int64, error) {
	var e Evaluator
	return e.Evaluate(node)
}

// Evaluate evaluates node. The stack is cleared before returning, whether or
// not evaluation succeeded.
func (e *Evaluator) Evaluate(node Node) (int64, error) {
	defer e.stack.Clear()

	if err := e.visit(node); err != nil {
		return 0, err
	}

	switch e.stack.Len() {
	case 0:
		return 0, types.NewStackUnderflowError()
	case 1:
		return e.stack.Pop()
	default:
		return 0, types.NewRuntimeError(types.TagUnbalancedStack)
	}
}

func (e *Evaluator) visit(node Node) error {
	switch n := node.(type) {
	case *NumNode:
		return e.stack.Push(n.Value)
	case *BinaryNode:
		if err := e.visit(n.Left); err != nil {
			return err
		}
		if err := e.visit(n.Right); err != nil {
			return err
		}
		return e.apply(n.Op)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported expression node type: %T", node)
	}
}

// apply pops the right then the left operand and pushes op's result.
func (e *Evaluator) apply(op OpKind) error {
	right, err := e.stack.Pop()
	if err != nil {
		return err
	}
	left, err := e.stack.Pop()
	if err != nil {
		return err
	}

	var result int64
	switch op {
	case OpAdd:
		result = left + right
	case OpSub:
		result = left - right
	case OpMul:
		result = left * right
	case OpDiv:
		if right == 0 {
			return types.NewDivisionByZeroError()
		}
		result = left / right
	default:
		return fmt.Errorf("unsupported binary operator: %s", op)
	}
	return e.stack.Push(result)
}

// EvalString runs the whole pipeline on a single expression. ok is false when
// the expression is empty.
func EvalString(src string) (value int64, ok bool, err error) {
	if strings.TrimSpace(src) == "" {
		return 0, false, nil
	}
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	tokens, err := Tokenize(src)
	if err != nil {
		return 0, false, err
	}
	tree, err := Parse(tokens)
	if err != nil {
		return 0, false, err
	}
	if tree == nil {
		return 0, false, nil
	}
	value, err = Evaluate(tree)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}
