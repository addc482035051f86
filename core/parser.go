package plic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type NodeKind int

const (
	NodeNumber NodeKind = iota
	NodeOperator
	NodeWord
	NodeKeyword
	NodeList
	NodeLambda // Children[0] = parameter expression, Body = captured text
)

func (n NodeKind) String() string {
	switch n {
	case NodeNumber:
		return "Number"
	case NodeOperator:
		return "Operator"
	case NodeWord:
		return "Word"
	case NodeKeyword:
		return "Keyword"
	case NodeList:
		return "List"
	case NodeLambda:
		return "Lambda"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(n))
	}
}

type Node struct {
	Kind     NodeKind
	Num      uint64
	Op       Op
	Str      string
	Body     string
	Children []*Node
}

func (n *Node) String() string {
	switch n.Kind {
	case NodeNumber:
		return strconv.FormatUint(n.Num, 10)
	case NodeOperator:
		return n.Op.Symbol()
	case NodeWord:
		return n.Str
	case NodeKeyword:
		return "λ"
	case NodeLambda:
		return "(λ " + n.Children[0].String() + " " + strings.TrimSpace(n.Body) + ")"
	case NodeList:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "<unknown>"
	}
}

type parser struct {
	src    TokenSource
	peeked *Token
}

// Parse reads exactly one expression from src. Tokens left over after the
// expression are an error.
func Parse(src TokenSource) (*Node, error) {
	p := &parser{src: src}
	node, err := p.parseExpr()
	if errors.Is(err, ErrClose) {
		return nil, otherf("unexpected ')'")
	}
	if err != nil {
		return nil, err
	}
	if tok, ok := p.Next(); ok {
		return nil, otherf("unexpected input after expression: %s", tok)
	}
	return node, nil
}

// ParseString tokenizes and parses a line.
func ParseString(line string, opts ...LexOption) (*Node, error) {
	return Parse(Tokens(line, opts...))
}

// Next makes the parser a TokenSource so the capturer can read through the
// lookahead buffer.
func (p *parser) Next() (Token, bool) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, true
	}
	return p.src.Next()
}

func (p *parser) peek() (Token, bool) {
	if p.peeked == nil {
		t, ok := p.src.Next()
		if !ok {
			return Token{}, false
		}
		p.peeked = &t
	}
	return *p.peeked, true
}

func (p *parser) parseExpr() (*Node, error) {
	tok, ok := p.Next()
	if !ok {
		return nil, otherf("unexpected end of input")
	}
	switch tok.Kind {
	case TokNumber:
		return &Node{Kind: NodeNumber, Num: tok.Num}, nil
	case TokPlus:
		return &Node{Kind: NodeOperator, Op: OpPlus}, nil
	case TokMinus:
		return &Node{Kind: NodeOperator, Op: OpMinus}, nil
	case TokWord:
		return &Node{Kind: NodeWord, Str: tok.Text}, nil
	case TokLambda:
		return &Node{Kind: NodeKeyword}, nil
	case TokParenOpen:
		if next, ok := p.peek(); ok && next.Kind == TokLambda {
			p.Next()
			return p.parseLambda()
		}
		return p.parseList()
	case TokParenClose:
		return nil, ErrClose
	default:
		return nil, otherf("unexpected token %s", tok)
	}
}

// parseLambda reads the parameter expression and captures the rest of the
// form as text.
func (p *parser) parseLambda() (*Node, error) {
	param, err := p.parseExpr()
	if errors.Is(err, ErrClose) {
		return nil, otherf("lambda: missing parameter")
	}
	if err != nil {
		return nil, err
	}
	body, err := CaptureBody(p)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeLambda, Body: body, Children: []*Node{param}}, nil
}

func (p *parser) parseList() (*Node, error) {
	head, err := p.parseExpr()
	if errors.Is(err, ErrClose) {
		return nil, otherf("empty combination")
	}
	if err != nil {
		return nil, err
	}
	children := []*Node{head}
	for {
		child, err := p.parseExpr()
		if errors.Is(err, ErrClose) {
			return &Node{Kind: NodeList, Children: children}, nil
		}
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}
