package plic

import (
	"fmt"
	"strconv"
)

type TokenKind int

const (
	TokParenOpen TokenKind = iota
	TokParenClose
	TokPlus
	TokMinus
	TokMultiply
	TokDivide
	TokIllegal
	TokNumber
	TokWord
	TokLambda
)

// Token is one lexical unit. Num is set for TokNumber, Text for TokWord and
// TokIllegal (the offending input).
type Token struct {
	Kind TokenKind
	Num  uint64
	Text string
}

func ParenOpen() Token       { return Token{Kind: TokParenOpen} }
func ParenClose() Token      { return Token{Kind: TokParenClose} }
func Plus() Token            { return Token{Kind: TokPlus} }
func Minus() Token           { return Token{Kind: TokMinus} }
func Multiply() Token        { return Token{Kind: TokMultiply} }
func Divide() Token          { return Token{Kind: TokDivide} }
func Lambda() Token          { return Token{Kind: TokLambda} }
func Number(n uint64) Token  { return Token{Kind: TokNumber, Num: n} }
func Word(w string) Token    { return Token{Kind: TokWord, Text: w} }
func Illegal(s string) Token { return Token{Kind: TokIllegal, Text: s} }

// Literal returns the source text that produces the token. Illegal tokens
// have no literal and return ok=false.
func (t Token) Literal() (string, bool) {
	switch t.Kind {
	case TokParenOpen:
		return "(", true
	case TokParenClose:
		return ")", true
	case TokPlus:
		return "+", true
	case TokMinus:
		return "-", true
	case TokMultiply:
		return "*", true
	case TokDivide:
		return "/", true
	case TokLambda:
		return "λ", true
	case TokNumber:
		return strconv.FormatUint(t.Num, 10), true
	case TokWord:
		return t.Text, true
	default:
		return "", false
	}
}

func (t Token) String() string {
	switch t.Kind {
	case TokNumber:
		return fmt.Sprintf("Number(%d)", t.Num)
	case TokWord:
		return fmt.Sprintf("Word(%s)", t.Text)
	case TokIllegal:
		return fmt.Sprintf("Illegal(%q)", t.Text)
	default:
		return t.Kind.String()
	}
}

func (k TokenKind) String() string {
	switch k {
	case TokParenOpen:
		return "ParenOpen"
	case TokParenClose:
		return "ParenClose"
	case TokPlus:
		return "Plus"
	case TokMinus:
		return "Minus"
	case TokMultiply:
		return "Multiply"
	case TokDivide:
		return "Divide"
	case TokIllegal:
		return "Illegal"
	case TokNumber:
		return "Number"
	case TokWord:
		return "Word"
	case TokLambda:
		return "Lambda"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// TokenSource is anything that yields tokens one at a time. The Lexer is the
// usual source; SliceSource feeds prepared tokens.
type TokenSource interface {
	Next() (Token, bool)
}

// SliceSource replays a fixed token slice.
type SliceSource struct {
	toks []Token
	pos  int
}

func NewSliceSource(toks []Token) *SliceSource {
	return &SliceSource{toks: toks}
}

func (s *SliceSource) Next() (Token, bool) {
	if s.pos >= len(s.toks) {
		return Token{}, false
	}
	t := s.toks[s.pos]
	s.pos++
	return t, true
}
