package infix

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression matches every grammar violation reported by an
// Evaluator:
//
//	errors.Is(err, infix.ErrInvalidExpression)
var ErrInvalidExpression = errors.New("invalid expression")

// InvalidExpressionError describes the grammar rule an expression broke.
type InvalidExpressionError struct {
	Msg string
	// Pos is the 1-based column of the offending token, or 0 when the
	// problem is only visible at the end of the expression.
	Pos int
}

func (e *InvalidExpressionError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("%s (column %d)", e.Msg, e.Pos)
	}
	return e.Msg
}

func (e *InvalidExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

func invalidf(pos int, format string, args ...any) error {
	return &InvalidExpressionError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
