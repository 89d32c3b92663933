// Command infix reads one infix arithmetic expression from standard input
// and prints its value.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"infix-evaluator/internal/infix"
	"infix-evaluator/internal/observability"
	"infix-evaluator/internal/token"
)

func main() {
	if err := observability.InitLogger(); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if err := run(os.Stdin, os.Stdout); err != nil {
		observability.Logger.Fatal("evaluating expression", zap.Error(err))
	}
}

// run prompts on out, evaluates the first line of in and prints either the
// value or the grammar error. Only failures to read in are returned.
func run(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Infix expression:")

	src := token.NewScanner(bufio.NewReader(in))
	value, err := infix.New(src).Evaluate()
	switch {
	case errors.Is(err, infix.ErrInvalidExpression):
		fmt.Fprintf(out, "Invalid expression: %v\n", err)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(out, formatValue(value))
	return nil
}

// formatValue renders v with at least one fractional digit, switching to E
// notation outside [1e-3, 1e7): "5.0", "0.25", "1.0E7", "Infinity".
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	if abs := math.Abs(v); v == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, 64), "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}
