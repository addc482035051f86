package plic

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindClose is not a fault: a closing parenthesis was reached.
	KindClose ErrorKind = iota
	KindNonApplicable
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindClose:
		return "Close"
	case KindNonApplicable:
		return "NonApplicable"
	case KindOther:
		return "Other"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// EvalError is returned by the parser, the evaluator and the builtins.
// Error() gives the fixed phrase shown to users; Detail says what went wrong
// and is only meant for logs and traces.
type EvalError struct {
	Kind   ErrorKind
	Detail string
}

var (
	ErrClose         = &EvalError{Kind: KindClose}
	ErrNonApplicable = &EvalError{Kind: KindNonApplicable}
	ErrOther         = &EvalError{Kind: KindOther}
)

func (e *EvalError) Error() string {
	switch e.Kind {
	case KindClose:
		return "unexpected closing parenthesis"
	case KindNonApplicable:
		return "not applicable"
	default:
		return "malformed expression"
	}
}

// Is matches any EvalError of the same kind, so errors.Is(err, ErrOther)
// holds regardless of Detail.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Kind == e.Kind
}

func otherf(format string, args ...any) *EvalError {
	return &EvalError{Kind: KindOther, Detail: fmt.Sprintf(format, args...)}
}

func nonApplicable(format string, args ...any) *EvalError {
	return &EvalError{Kind: KindNonApplicable, Detail: fmt.Sprintf(format, args...)}
}

// ErrorDetail returns the phrase plus the detail when err is an EvalError.
func ErrorDetail(err error) string {
	var e *EvalError
	if errors.As(err, &e) && e.Detail != "" {
		return e.Error() + ": " + e.Detail
	}
	return err.Error()
}
