package plic

import (
	"fmt"
	"strconv"
)

type ValueKind int

const (
	ValInteger ValueKind = iota
	ValOperation
	ValSymbol
	ValLambda
	ValKeyword
	ValPair // reserved for list structure; never produced by evaluation
)

// LambdaValue pairs a parameter name with the unevaluated source text of the
// body.
type LambdaValue struct {
	Param string
	Body  string
}

// Value is the result of evaluation. Values are immutable once built and are
// copied freely.
type Value struct {
	Kind   ValueKind
	Int    uint64
	Op     Op
	Str    string
	Lambda *LambdaValue
	Pair   [2]int
}

func IntegerVal(n uint64) Value  { return Value{Kind: ValInteger, Int: n} }
func OperationVal(op Op) Value   { return Value{Kind: ValOperation, Op: op} }
func SymbolVal(s string) Value   { return Value{Kind: ValSymbol, Str: s} }
func KeywordVal() Value          { return Value{Kind: ValKeyword} }
func PairVal(car, cdr int) Value { return Value{Kind: ValPair, Pair: [2]int{car, cdr}} }
func LambdaVal(param, body string) Value {
	return Value{Kind: ValLambda, Lambda: &LambdaValue{Param: param, Body: body}}
}

// OperationPlaceholder is how every operation renders.
const OperationPlaceholder = "<operation>"

func (v Value) String() string {
	switch v.Kind {
	case ValInteger:
		return strconv.FormatUint(v.Int, 10)
	case ValOperation:
		return OperationPlaceholder
	case ValSymbol:
		return "'" + v.Str
	case ValLambda:
		return fmt.Sprintf("%s => %s", v.Lambda.Param, v.Lambda.Body)
	case ValKeyword:
		return "λ"
	case ValPair:
		return fmt.Sprintf("<pair %d %d>", v.Pair[0], v.Pair[1])
	default:
		return fmt.Sprintf("<unknown:%d>", v.Kind)
	}
}

func (v Value) KindName() string {
	switch v.Kind {
	case ValInteger:
		return "Integer"
	case ValOperation:
		return "Operation"
	case ValSymbol:
		return "Symbol"
	case ValLambda:
		return "Lambda"
	case ValKeyword:
		return "Keyword"
	case ValPair:
		return "Pair"
	default:
		return "Unknown"
	}
}

// ValuesEqual compares two Values structurally.
func ValuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValInteger:
		return a.Int == b.Int
	case ValOperation:
		return a.Op == b.Op
	case ValSymbol:
		return a.Str == b.Str
	case ValLambda:
		return *a.Lambda == *b.Lambda
	case ValKeyword:
		return true
	case ValPair:
		return a.Pair == b.Pair
	}
	return false
}

// ValueToGo converts a Value to a native Go value for JSON responses.
func ValueToGo(v Value) (any, error) {
	switch v.Kind {
	case ValInteger:
		return v.Int, nil
	case ValOperation:
		return map[string]any{"operation": v.Op.Name()}, nil
	case ValSymbol:
		return map[string]any{"symbol": v.Str}, nil
	case ValLambda:
		return map[string]any{"param": v.Lambda.Param, "body": v.Lambda.Body}, nil
	case ValKeyword:
		return map[string]any{"keyword": "λ"}, nil
	case ValPair:
		return nil, fmt.Errorf("cannot serialize Pair to JSON")
	default:
		return nil, fmt.Errorf("unknown value kind")
	}
}
