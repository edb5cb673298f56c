package expr

import (
	"strings"
	"unicode/utf8"

	"github.com/lemonberrylabs/calc/pkg/types"
)

// snippetRadius is how many characters of context a lex error shows on each side.
const snippetRadius = 5

// Lexer tokenizes one source line.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given line.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans the whole line and returns its tokens. On failure no tokens
// are returned.
func Tokenize(line string) ([]Token, error) {
	return NewLexer(line).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.input) {
		tok, ok, err := l.next()
		if err != nil {
			l.tokens = nil
			return nil, err
		}
		if ok {
			l.tokens = append(l.tokens, tok)
		}
	}
	return l.tokens, nil
}

// next scans the token starting at the current position. ok is false when
// only whitespace was consumed.
func (l *Lexer) next() (Token, bool, error) {
	ch := l.input[l.pos]

	if isSpace(ch) {
		l.pos++
		return Token{}, false, nil
	}

	if isDigit(ch) {
		return l.readNumber(), true, nil
	}

	var tt TokenType
	switch ch {
	case '+':
		tt = TokenPlus
	case '-':
		tt = TokenMinus
	case '*':
		tt = TokenTimes
	case '/':
		tt = TokenDivide
	case '(':
		tt = TokenBracketOpen
	case ')':
		tt = TokenBracketClose
	case '\n':
		tt = TokenEndOfExpression
	case EndOfFileMarker:
		tt = TokenEndOfFile
	default:
		return Token{}, false, l.unexpected()
	}
	l.pos++
	return Token{Type: tt, Pos: l.pos - 1}, true, nil
}

// readNumber reads a maximal run of digits.
func (l *Lexer) readNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenNumber, Lexeme: l.input[start:l.pos], Pos: start}
}

// unexpected builds the LexError for the character at the current position.
// The fault and its context are measured in runes so that multi-byte
// characters are reported whole.
func (l *Lexer) unexpected() error {
	i := l.pos
	ch, size := utf8.DecodeRuneInString(l.input[i:])

	rest := l.input[i+size:]
	if j := strings.IndexAny(rest, "\n\x00"); j >= 0 {
		rest = rest[:j]
	}

	ctx := &types.Snippet{
		Before: lastRunes(l.input[:i], snippetRadius),
		Char:   l.input[i : i+size],
		After:  firstRunes(rest, snippetRadius),
	}
	return types.NewLexError(ch, utf8.RuneCountInString(l.input[:i])+1, ctx)
}

// firstRunes returns the leading n runes of s.
func firstRunes(s string, n int) string {
	end := 0
	for ; n > 0 && end < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}

// lastRunes returns the trailing n runes of s.
func lastRunes(s string, n int) string {
	start := len(s)
	for ; n > 0 && start > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		start -= size
	}
	return s[start:]
}

// isSpace matches C isspace minus the newline, which is a token.
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
