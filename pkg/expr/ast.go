package expr

import (
	"strconv"
	"strings"
)

// Node is the interface for all expression AST nodes.
type Node interface {
	nodeType() string
}

// OpKind is the operator of a BinaryNode.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the operator symbol.
func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// NumNode is an integer leaf.
type NumNode struct {
	Value int64
}

func (n *NumNode) nodeType() string { return "Num" }

// BinaryNode represents a binary operation (e.g., a + b). Both children are
// always set.
type BinaryNode struct {
	Op    OpKind
	Left  Node
	Right Node
}

func (n *BinaryNode) nodeType() string { return "Binary" }

// Format renders a tree in fully parenthesized form, e.g. "((10 - 2) - 3)".
func Format(node Node) string {
	var sb strings.Builder
	format(&sb, node)
	return sb.String()
}

func format(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *NumNode:
		sb.WriteString(strconv.FormatInt(n.Value, 10))
	case *BinaryNode:
		sb.WriteByte('(')
		format(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		format(sb, n.Right)
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<empty>")
	}
}
