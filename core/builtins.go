package plic

import (
	"fmt"
	"math/bits"
)

// Op identifies a builtin operation. The set is closed; implementations are
// looked up in the builtins table.
type Op int

const (
	OpPlus Op = iota
	OpMinus
)

// Builtin reduces an operand list to a value.
type Builtin func(operands []Value) (Value, error)

var builtins = map[Op]Builtin{
	OpPlus:  builtinPlus,
	OpMinus: builtinMinus,
}

var opNames = map[Op]string{
	OpPlus:  "plus",
	OpMinus: "minus",
}

var opSymbols = map[Op]string{
	OpPlus:  "+",
	OpMinus: "-",
}

func (op Op) Name() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op%d", int(op))
}

// Symbol is the source text that denotes the operation.
func (op Op) Symbol() string {
	return opSymbols[op]
}

// LookupOp resolves an operation by name ("plus") or symbol ("+").
func LookupOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name || opSymbols[op] == name {
			return op, true
		}
	}
	return 0, false
}

// Builtins lists the operation names in Op order.
func Builtins() []string {
	names := make([]string, 0, len(opNames))
	for op := OpPlus; op <= OpMinus; op++ {
		names = append(names, op.Name())
	}
	return names
}

// Apply invokes the head value with the operand list. Only operations are
// applicable.
func Apply(head Value, operands []Value) (Value, error) {
	if head.Kind != ValOperation {
		return Value{}, nonApplicable("cannot apply %s", head.KindName())
	}
	fn, ok := builtins[head.Op]
	if !ok {
		return Value{}, nonApplicable("no builtin for %s", head.Op.Name())
	}
	return fn(operands)
}

// --- Builtin implementations ---

func integerOperands(name string, operands []Value) ([]uint64, error) {
	ns := make([]uint64, len(operands))
	for i, v := range operands {
		if v.Kind != ValInteger {
			return nil, otherf("%s: operand %d is %s, not Integer", name, i+1, v.KindName())
		}
		ns[i] = v.Int
	}
	return ns, nil
}

func builtinPlus(operands []Value) (Value, error) {
	ns, err := integerOperands("plus", operands)
	if err != nil {
		return Value{}, err
	}
	var sum uint64
	for _, n := range ns {
		var carry uint64
		sum, carry = bits.Add64(sum, n, 0)
		if carry != 0 {
			return Value{}, otherf("plus: overflow")
		}
	}
	return IntegerVal(sum), nil
}

func builtinMinus(operands []Value) (Value, error) {
	if len(operands) == 0 {
		return Value{}, otherf("minus: expected at least 1 operand")
	}
	ns, err := integerOperands("minus", operands)
	if err != nil {
		return Value{}, err
	}
	acc := ns[0]
	for _, n := range ns[1:] {
		if n > acc {
			return Value{}, otherf("minus: %d - %d is negative", acc, n)
		}
		acc -= n
	}
	return IntegerVal(acc), nil
}
