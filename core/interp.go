package plic

import "log"

// Options tune an Interpreter.
type Options struct {
	// LambdaASCII is accepted in place of λ. Zero disables the stand-in.
	LambdaASCII rune
	// TraceTokens logs every token the lexer produces.
	TraceTokens bool
	// Logger receives token traces and evaluation failures. Nil silences
	// both.
	Logger *log.Logger
}

func DefaultOptions() Options {
	return Options{LambdaASCII: DefaultLambdaASCII}
}

// Interpreter evaluates independent lines. Nothing is shared between calls:
// every line gets a fresh environment.
type Interpreter struct {
	opts Options
}

func NewInterpreter(opts Options) *Interpreter {
	return &Interpreter{opts: opts}
}

func (in *Interpreter) lexOptions() []LexOption {
	opts := []LexOption{WithLambdaASCII(in.opts.LambdaASCII)}
	if in.opts.TraceTokens && in.opts.Logger != nil {
		opts = append(opts, WithTokenLog(in.opts.Logger))
	}
	return opts
}

// Tokens lexes a line with the interpreter's settings.
func (in *Interpreter) Tokens(line string) []Token {
	return Tokens(line, in.lexOptions()...).All()
}

// Evaluate parses and reduces one line.
func (in *Interpreter) Evaluate(line string) (Value, error) {
	val, err := NewEvaluator().EvalString(line, in.lexOptions()...)
	if err != nil && in.opts.Logger != nil {
		in.opts.Logger.Printf("eval %q: %s", line, ErrorDetail(err))
	}
	return val, err
}

// EvaluateLine evaluates one line and renders the outcome. On failure the
// error's message is the fixed phrase for its kind.
func (in *Interpreter) EvaluateLine(line string) (string, error) {
	val, err := in.Evaluate(line)
	if err != nil {
		return "", err
	}
	return val.String(), nil
}

// Capture re-serializes the single expression on line.
func (in *Interpreter) Capture(line string) (string, error) {
	return CaptureExpr(Tokens(line, in.lexOptions()...))
}

var defaultInterpreter = NewInterpreter(DefaultOptions())

// EvaluateLine evaluates one line with default options.
func EvaluateLine(line string) (string, error) {
	return defaultInterpreter.EvaluateLine(line)
}
