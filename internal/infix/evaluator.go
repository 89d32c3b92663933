// Package infix evaluates one-line infix arithmetic expressions in a single
// pass. Operators and numbers are resolved on two stacks as the tokens
// arrive, so no postfix form is ever built.
//
// The grammar is binary + - * / ^ over non-negative decimal literals, with
// ( ) and { } as interchangeable, nestable brackets. There are no unary
// operators: "3-2" is a subtraction and "-2" is rejected.
package infix

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"infix-evaluator/internal/stack"
	"infix-evaluator/internal/token"
)

// TokenSource yields classified tokens. An EOL token ends the expression.
type TokenSource interface {
	Next() (token.Token, error)
}

// Resolution records one operator applied to its two operands.
type Resolution struct {
	Op     rune
	Left   float64
	Right  float64
	Result float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithResolutionHook registers fn to be called after every resolution, in
// evaluation order.
func WithResolutionHook(fn func(Resolution)) Option {
	return func(e *Evaluator) {
		e.onResolve = fn
	}
}

var errReused = errors.New("infix: evaluator already used")

// state is what the grammar checks know about the previous token.
type state struct {
	operand bool
	char    rune
}

// Evaluator evaluates a single expression read from a TokenSource. It is
// not safe for concurrent use and cannot be reused; create one per
// expression.
type Evaluator struct {
	src       TokenSource
	operators *stack.Stack[rune]
	operands  *stack.Stack[float64]
	prev      state
	onResolve func(Resolution)
	used      bool
}

// New returns an Evaluator that reads its expression from src.
func New(src TokenSource, opts ...Option) *Evaluator {
	e := &Evaluator{
		src:       src,
		operators: stack.New[rune](),
		operands:  stack.New[float64](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateString evaluates the first line of expr.
func EvaluateString(expr string, opts ...Option) (float64, error) {
	return New(token.NewScanner(strings.NewReader(expr)), opts...).Evaluate()
}

// Evaluate consumes tokens up to the end of the expression and returns its
// value. Grammar violations are reported as *InvalidExpressionError as soon
// as the offending token is seen. Errors from the token source are returned
// wrapped and do not match ErrInvalidExpression.
func (e *Evaluator) Evaluate() (float64, error) {
	if e.used {
		return 0, errReused
	}
	e.used = true

	for {
		tok, err := e.src.Next()
		if err != nil {
			return 0, fmt.Errorf("infix: %w", err)
		}
		if tok.Kind == token.EOL {
			break
		}
		if err := e.handle(tok); err != nil {
			return 0, err
		}
	}

	return e.finish()
}

func (e *Evaluator) handle(tok token.Token) error {
	var err error
	switch tok.Kind {
	case token.Number:
		err = e.handleOperand(tok)
		e.prev = state{operand: true}
	case token.Operator:
		if !isOperator(tok.Char) {
			return invalidf(tok.Pos, "unrecognized symbol: %c", tok.Char)
		}
		err = e.handleOperator(tok)
		e.prev = state{char: tok.Char}
	case token.Open:
		if !isOpen(tok.Char) {
			return invalidf(tok.Pos, "unrecognized symbol: %c", tok.Char)
		}
		err = e.handleOpenBracket(tok)
		e.prev = state{char: tok.Char}
	case token.Close:
		if !isClose(tok.Char) {
			return invalidf(tok.Pos, "unrecognized symbol: %c", tok.Char)
		}
		err = e.handleCloseBracket(tok)
		e.prev = state{char: tok.Char}
	case token.Word:
		return invalidf(tok.Pos, "unrecognized symbol: %s", tok.Text)
	default:
		return invalidf(tok.Pos, "unrecognized symbol: %c", tok.Char)
	}
	return err
}

func (e *Evaluator) handleOperand(tok token.Token) error {
	if e.prev.operand {
		return invalidf(tok.Pos, "cannot have multiple operands in succession")
	}
	if isClose(e.prev.char) {
		return invalidf(tok.Pos, "an operand cannot follow a closing bracket")
	}

	e.operands.Push(tok.Value)
	return nil
}

func (e *Evaluator) handleOperator(tok token.Token) error {
	if !e.prev.operand {
		if isOpen(e.prev.char) {
			return invalidf(tok.Pos, "an operator cannot follow an opening bracket")
		}
		if isOperator(e.prev.char) {
			return invalidf(tok.Pos, "cannot have two operators in succession")
		}
	}

	// Open brackets rank below every operator, so this never crosses into
	// an enclosing scope.
	for {
		top, err := e.operators.Peek()
		if errors.Is(err, stack.ErrEmpty) || Precedence(top) < Precedence(tok.Char) {
			break
		}
		if err := e.resolve(tok.Pos); err != nil {
			return err
		}
	}

	e.operators.Push(tok.Char)
	return nil
}

func (e *Evaluator) handleOpenBracket(tok token.Token) error {
	if e.prev.operand {
		return invalidf(tok.Pos, "an opening bracket cannot follow an operand")
	}
	if isClose(e.prev.char) {
		return invalidf(tok.Pos, "an opening bracket cannot follow a closing bracket")
	}

	e.operators.Push(tok.Char)
	return nil
}

// handleCloseBracket resolves operators down to the nearest open bracket.
// Bracket kinds are not paired: "(2+3}" is accepted. A closed bracket is a
// complete value, so brackets may close back to back.
func (e *Evaluator) handleCloseBracket(tok token.Token) error {
	if !e.prev.operand && !isClose(e.prev.char) {
		return invalidf(tok.Pos, "a closing bracket must follow an operand")
	}

	for {
		top, err := e.operators.Peek()
		if errors.Is(err, stack.ErrEmpty) {
			return invalidf(tok.Pos, "unmatched closing bracket %c", tok.Char)
		}
		if isOpen(top) {
			_, err = e.operators.Pop()
			return err
		}
		if err := e.resolve(tok.Pos); err != nil {
			return err
		}
	}
}

// finish resolves everything left on the operator stack once the end of the
// expression is reached.
func (e *Evaluator) finish() (float64, error) {
	if e.operands.IsEmpty() && e.operators.IsEmpty() {
		return 0, invalidf(0, "empty expression")
	}

	for !e.operators.IsEmpty() {
		top, err := e.operators.Peek()
		if err != nil {
			return 0, fmt.Errorf("infix: %w", err)
		}
		if isOpen(top) {
			return 0, invalidf(0, "unmatched opening bracket %c", top)
		}
		if err := e.resolve(0); err != nil {
			return 0, err
		}
	}

	if n := e.operands.Len(); n != 1 {
		return 0, invalidf(0, "expression reduces to %d values", n)
	}

	return e.operands.Pop()
}

// resolve pops the top operator and its two operands and pushes the result.
// pos locates the token that triggered the resolution.
func (e *Evaluator) resolve(pos int) error {
	op, err := e.operators.Pop()
	if err != nil {
		return fmt.Errorf("infix: %w", err)
	}

	right, err := e.operands.Pop()
	if err != nil {
		return invalidf(pos, "operator %c is missing an operand", op)
	}
	left, err := e.operands.Pop()
	if err != nil {
		return invalidf(pos, "operator %c is missing an operand", op)
	}

	result := Apply(op, left, right)
	e.operands.Push(result)

	if e.onResolve != nil {
		e.onResolve(Resolution{Op: op, Left: left, Right: right, Result: result})
	}
	return nil
}

// Precedence ranks the binary operators. Anything else, brackets included,
// ranks -1.
func Precedence(op rune) int {
	switch op {
	case '^':
		return 3
	case '*', '/':
		return 2
	case '+', '-':
		return 1
	default:
		return -1
	}
}

// Apply computes left op right with IEEE-754 semantics: dividing by zero
// yields an infinity or NaN rather than an error. Unknown operators yield
// NaN.
func Apply(op rune, left, right float64) float64 {
	switch op {
	case '+':
		return left + right
	case '-':
		return left - right
	case '*':
		return left * right
	case '/':
		return left / right
	case '^':
		return math.Pow(left, right)
	default:
		return math.NaN()
	}
}

func isOperator(r rune) bool { return Precedence(r) > 0 }

func isOpen(r rune) bool { return r == '(' || r == '{' }

func isClose(r rune) bool { return r == ')' || r == '}' }
