// Package template implements the expression subset used inside
// configuration values: {{ ... }} expression units and {% ... %}
// statement blocks, rendered against a variable scope. Resolution
// failures are classified explicitly so that the expander can leave
// individual units literal instead of failing the whole document.
package template

import (
	"errors"
	"fmt"
)

// ErrKind classifies a rendering failure.
type ErrKind int

const (
	// ErrUndefined marks an unknown variable, attribute, or index.
	ErrUndefined ErrKind = iota
	// ErrValue marks an invalid value (e.g. a malformed conversion).
	ErrValue
	// ErrType marks an operation applied to incompatible types.
	ErrType
	// ErrDivision marks a division or modulo by zero.
	ErrDivision
	// ErrSyntax marks a malformed expression. Never absorbed.
	ErrSyntax
)

// Error is a classified rendering failure.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUndefined:
		return "undefined: " + e.Msg
	case ErrValue:
		return "value error: " + e.Msg
	case ErrType:
		return "type error: " + e.Msg
	case ErrDivision:
		return "division error: " + e.Msg
	}
	return "syntax error: " + e.Msg
}

func errUndefined(format string, args ...any) error {
	return &Error{Kind: ErrUndefined, Msg: fmt.Sprintf(format, args...)}
}

func errValue(format string, args ...any) error {
	return &Error{Kind: ErrValue, Msg: fmt.Sprintf(format, args...)}
}

func errType(format string, args ...any) error {
	return &Error{Kind: ErrType, Msg: fmt.Sprintf(format, args...)}
}

func errDivision(format string, args ...any) error {
	return &Error{Kind: ErrDivision, Msg: fmt.Sprintf(format, args...)}
}

func errSyntax(format string, args ...any) error {
	return &Error{Kind: ErrSyntax, Msg: fmt.Sprintf(format, args...)}
}

// Recoverable reports whether err is one of the absorbed failure
// kinds: undefined, value, type, or division. Everything else aborts
// the expansion that triggered it.
func Recoverable(err error) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	switch te.Kind {
	case ErrUndefined, ErrValue, ErrType, ErrDivision:
		return true
	}
	return false
}
