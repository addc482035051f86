package plic

// Evaluator reduces parsed expressions against a single environment.
type Evaluator struct {
	Env *Env
}

func NewEvaluator() *Evaluator {
	return &Evaluator{Env: NewEnv()}
}

func (e *Evaluator) Eval(node *Node) (Value, error) {
	switch node.Kind {
	case NodeNumber:
		return IntegerVal(node.Num), nil
	case NodeOperator:
		return OperationVal(node.Op), nil
	case NodeKeyword:
		return KeywordVal(), nil
	case NodeWord:
		return e.resolveWord(node.Str), nil
	case NodeLambda:
		return e.evalLambda(node)
	case NodeList:
		return e.evalList(node)
	default:
		return Value{}, otherf("unknown node kind: %d", node.Kind)
	}
}

// resolveWord returns the bound value, or the name itself as a Symbol.
// An unbound word is not an error.
func (e *Evaluator) resolveWord(name string) Value {
	if e.Env != nil {
		if v, ok := e.Env.Lookup(name); ok {
			return v
		}
	}
	return SymbolVal(name)
}

func (e *Evaluator) evalLambda(node *Node) (Value, error) {
	param, err := e.Eval(node.Children[0])
	if err != nil {
		return Value{}, err
	}
	if param.Kind != ValSymbol {
		return Value{}, otherf("lambda: parameter must be Symbol, got %s", param.KindName())
	}
	return LambdaVal(param.Str, node.Body), nil
}

func (e *Evaluator) evalList(node *Node) (Value, error) {
	if len(node.Children) == 0 {
		return Value{}, otherf("cannot eval empty combination")
	}
	// Any failure to produce the head is malformed. NonApplicable is kept
	// for heads that evaluate to something other than an operation.
	head, err := e.Eval(node.Children[0])
	if err != nil {
		return Value{}, otherf("combination head: %s", ErrorDetail(err))
	}
	operands := make([]Value, 0, len(node.Children)-1)
	for _, child := range node.Children[1:] {
		v, err := e.Eval(child)
		if err != nil {
			return Value{}, err
		}
		operands = append(operands, v)
	}
	return Apply(head, operands)
}

// EvalString parses and evaluates one line with this evaluator's
// environment.
func (e *Evaluator) EvalString(input string, opts ...LexOption) (Value, error) {
	node, err := ParseString(input, opts...)
	if err != nil {
		return Value{}, err
	}
	return e.Eval(node)
}

// Evaluate parses and evaluates one line in a fresh environment.
func Evaluate(input string) (Value, error) {
	return NewEvaluator().EvalString(input)
}
