// Package expr implements the calculator's expression pipeline: a lexer, a
// recursive-descent parser producing an AST, and a stack-based evaluator.
// It handles integer arithmetic with +, -, *, / and parentheses.
package expr

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenNumber TokenType = iota // run of decimal digits

	// Arithmetic
	TokenPlus   // +
	TokenMinus  // -
	TokenTimes  // *
	TokenDivide // /

	// Brackets
	TokenBracketOpen  // (
	TokenBracketClose // )

	// Special
	TokenEndOfExpression // end of line
	TokenEndOfFile       // end of input stream
)

// EndOfFileMarker is the byte a LineSource hands over once the input is exhausted.
const EndOfFileMarker = '\x00'

// Token represents a single lexical token.
type Token struct {
	Type   TokenType
	Lexeme string // exact digit substring (TokenNumber only)
	Pos    int    // byte offset in the source line
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "NUMBER"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenTimes:
		return "TIMES"
	case TokenDivide:
		return "DIVIDE"
	case TokenBracketOpen:
		return "LPAREN"
	case TokenBracketClose:
		return "RPAREN"
	case TokenEndOfExpression:
		return "EOX"
	case TokenEndOfFile:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Text returns the source text a token stands for, as shown in diagnostics.
func (t Token) Text() string {
	switch t.Type {
	case TokenNumber:
		return t.Lexeme
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenTimes:
		return "*"
	case TokenDivide:
		return "/"
	case TokenBracketOpen:
		return "("
	case TokenBracketClose:
		return ")"
	case TokenEndOfExpression:
		return `\n`
	case TokenEndOfFile:
		return "EOF"
	default:
		return "?"
	}
}

// String formats the token for debug logging.
func (t Token) String() string {
	if t.Type == TokenNumber {
		return t.Type.String() + "(" + t.Lexeme + ")"
	}
	return t.Type.String()
}
