// Package token classifies the characters of a one-line arithmetic
// expression into the tokens consumed by the infix evaluator.
package token

import (
	"strconv"
)

type Kind int

const (
	// EOL marks the end of the expression: a line break or the end of input.
	EOL Kind = iota
	// Number is a non-negative decimal literal such as 3, 2.5 or .5.
	Number
	// Operator is one of + - * / ^.
	Operator
	// Open is an opening bracket, ( or {.
	Open
	// Close is a closing bracket, ) or }.
	Close
	// Word is an identifier-like run of letters. The grammar has no names,
	// so words are always rejected by the evaluator.
	Word
	// Other is any single rune that fits no other class.
	Other
)

var kindNames = [...]string{
	EOL:      "EOL",
	Number:   "Number",
	Operator: "Operator",
	Open:     "Open",
	Close:    "Close",
	Word:     "Word",
	Other:    "Other",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Operators, OpenBrackets and CloseBrackets list the runes of each
// single-character token class.
const (
	Operators     = "+-*/^"
	OpenBrackets  = "({"
	CloseBrackets = ")}"
)

type Token struct {
	Kind Kind
	// Value is set for Number tokens.
	Value float64
	// Text is the source text of the token.
	Text string
	// Char is the rune of single-character tokens (Operator, Open, Close,
	// Other).
	Char rune
	// Pos is the 1-based column of the first rune of the token.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}
