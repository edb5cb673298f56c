package expr

import (
	"strconv"

	"github.com/lemonberrylabs/calc/pkg/types"
)

// Cursor hands out tokens one at a time. Once the stream is exhausted it keeps
// returning the last token it produced.
type Cursor struct {
	tokens []Token
	next   int
	active Token
}

// NewCursor creates a cursor over tokens. An empty stream behaves as a single
// end-of-file token.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens, active: Token{Type: TokenEndOfFile}}
}

// Next advances to the next token and returns it.
func (c *Cursor) Next() Token {
	if c.next < len(c.tokens) {
		c.active = c.tokens[c.next]
		c.next++
	}
	return c.active
}

// Current returns the most recently pulled token.
func (c *Cursor) Current() Token {
	return c.active
}

// Parser is a recursive descent parser for calculator expressions.
//
// Grammar (lowest precedence first, every level left-associative):
//
//	expression := add_expr (EOX | EOF)
//	add_expr   := sub_expr ( '+' sub_expr )*
//	sub_expr   := mul_expr ( '-' mul_expr )*
//	mul_expr   := div_expr ( '*' div_expr )*
//	div_expr   := unit     ( '/' unit     )*
//	unit       := NUMBER | '(' add_expr ')'
type Parser struct {
	cur *Cursor
}

// NewParser creates a parser that owns the given token stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{cur: NewCursor(tokens)}
}

// Parse parses one token stream into a tree. A stream that starts with
// end-of-file yields a nil tree and no error.
func Parse(tokens []Token) (Node, error) {
	return NewParser(tokens).Parse()
}

// Parse parses the parser's token stream.
func (p *Parser) Parse() (Node, error) {
	p.cur.Next()
	if p.is(TokenEndOfFile) {
		return nil, nil
	}
	return p.parseExpression()
}

func (p *Parser) is(tt TokenType) bool {
	return p.cur.Current().Type == tt
}

// column returns the 1-based column of the current token.
func (p *Parser) column() int {
	return p.cur.Current().Pos + 1
}

func (p *Parser) parseExpression() (Node, error) {
	node, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if !p.is(TokenEndOfExpression) && !p.is(TokenEndOfFile) {
		return nil, types.NewSyntaxError(p.column(),
			"expected end of expression near '%s' at column %d", p.cur.Current().Text(), p.column())
	}
	p.cur.Next()
	return node, nil
}

// parseBinary parses operand ( op operand )* and folds the results to the left.
func (p *Parser) parseBinary(tt TokenType, op OpKind, operand func() (Node, error)) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for p.is(tt) {
		p.cur.Next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdd() (Node, error) {
	return p.parseBinary(TokenPlus, OpAdd, p.parseSub)
}

func (p *Parser) parseSub() (Node, error) {
	return p.parseBinary(TokenMinus, OpSub, p.parseMul)
}

func (p *Parser) parseMul() (Node, error) {
	return p.parseBinary(TokenTimes, OpMul, p.parseDiv)
}

func (p *Parser) parseDiv() (Node, error) {
	return p.parseBinary(TokenDivide, OpDiv, p.parseUnit)
}

func (p *Parser) parseUnit() (Node, error) {
	tok := p.cur.Current()

	switch tok.Type {
	case TokenBracketOpen:
		p.cur.Next()
		node, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		if !p.is(TokenBracketClose) {
			return nil, types.NewSyntaxError(p.column(),
				"expected closing ')' before end of expression near '%s' at column %d", p.cur.Current().Text(), p.column())
		}
		p.cur.Next()
		return node, nil
	case TokenNumber:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, types.NewSyntaxError(tok.Pos+1,
				"integer literal %s out of range at column %d", tok.Lexeme, tok.Pos+1)
		}
		p.cur.Next()
		return &NumNode{Value: v}, nil
	default:
		return nil, types.NewSyntaxError(tok.Pos+1,
			"expected an integer or '(' near '%s' at column %d", tok.Text(), tok.Pos+1)
	}
}
