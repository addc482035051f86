package plic

import (
	"log"
	"strconv"
	"unicode"
)

// DefaultLambdaASCII is the ASCII stand-in for λ.
const DefaultLambdaASCII = '\\'

// Lexer produces tokens lazily from a line of text. It is not restartable:
// once Next reports false, the input is exhausted.
type Lexer struct {
	input    []rune
	pos      int
	lambdaCh rune
	logger   *log.Logger
}

type LexOption func(*Lexer)

// WithLambdaASCII sets the ASCII character accepted in place of λ. A zero
// rune disables the stand-in.
func WithLambdaASCII(ch rune) LexOption {
	return func(l *Lexer) { l.lambdaCh = ch }
}

// WithTokenLog logs every produced token.
func WithTokenLog(logger *log.Logger) LexOption {
	return func(l *Lexer) { l.logger = logger }
}

func Tokens(line string, opts ...LexOption) *Lexer {
	l := &Lexer{input: []rune(line), lambdaCh: DefaultLambdaASCII}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lexer) Next() (Token, bool) {
	tok, ok := l.next()
	if ok && l.logger != nil {
		l.logger.Printf("token: %s", tok)
	}
	return tok, ok
}

// All drains the remaining tokens.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		t, ok := l.Next()
		if !ok {
			return toks
		}
		toks = append(toks, t)
	}
}

func (l *Lexer) next() (Token, bool) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return Token{}, false
	}
	ch := l.input[l.pos]
	l.pos++

	switch {
	case ch == '(':
		return ParenOpen(), true
	case ch == ')':
		return ParenClose(), true
	case ch == '+':
		return Plus(), true
	case ch == '-':
		return Minus(), true
	case ch == '*':
		return Multiply(), true
	case ch == '/':
		return Divide(), true
	case ch == 'λ' || (l.lambdaCh != 0 && ch == l.lambdaCh):
		return Lambda(), true
	case isDigit(ch):
		return l.number(l.pos - 1), true
	case isWordRune(ch):
		return l.word(l.pos - 1), true
	default:
		return Illegal(string(ch)), true
	}
}

func (l *Lexer) number(start int) Token {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	text := string(l.input[start:l.pos])
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		// out of range for uint64
		return Illegal(text)
	}
	return Number(n)
}

func (l *Lexer) word(start int) Token {
	for l.pos < len(l.input) && isWordRune(l.input[l.pos]) {
		l.pos++
	}
	return Word(string(l.input[start:l.pos]))
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// λ is a Unicode letter but never part of a word.
func isWordRune(ch rune) bool {
	return ch == '_' || (ch != 'λ' && unicode.IsLetter(ch))
}
