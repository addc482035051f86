package plic

import (
	"errors"
	"strings"
)

// CaptureExpr re-serializes exactly one expression from src without
// evaluating it. Every atom is followed by a single space and every nested
// list is rendered as "( " + contents + ") ".
func CaptureExpr(src TokenSource) (string, error) {
	var b strings.Builder
	if err := captureExpr(src, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CaptureBody re-serializes expressions up to the closing parenthesis that
// ends the enclosing form. The closer is consumed but not rendered.
func CaptureBody(src TokenSource) (string, error) {
	var b strings.Builder
	if err := captureUntilClose(src, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func captureExpr(src TokenSource, b *strings.Builder) error {
	tok, ok := src.Next()
	if !ok {
		return otherf("capture: unexpected end of input")
	}
	switch tok.Kind {
	case TokParenClose:
		return ErrClose
	case TokParenOpen:
		b.WriteString("( ")
		if err := captureUntilClose(src, b); err != nil {
			return err
		}
		b.WriteString(") ")
		return nil
	}
	lit, ok := tok.Literal()
	if !ok {
		return otherf("capture: illegal token %q", tok.Text)
	}
	b.WriteString(lit)
	b.WriteByte(' ')
	return nil
}

func captureUntilClose(src TokenSource, b *strings.Builder) error {
	for {
		err := captureExpr(src, b)
		if errors.Is(err, ErrClose) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
