package interpret

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Op is an arithmetic operator.
type Op string

const (
	OpAdd      Op = "add"
	OpSubtract Op = "subtract"
	OpMultiply Op = "multiply"
	OpDivide   Op = "divide"
)

// Symbol is the operator as printed in an expression.
func (o Op) Symbol() string {
	switch o {
	case OpSubtract:
		return "−"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return "+"
	}
}

// Arithmetic is the derived result of a op b.
// For division Value is the quotient. Defined is false for a zero divisor.
type Arithmetic struct {
	Op        Op
	A, B      int
	Value     int
	Quotient  int
	Remainder int
	Defined   bool
}

// Derive computes a op b with integer arithmetic. Division by zero is
// reported as undefined rather than failing.
func Derive(op Op, a, b int) Arithmetic {
	r := Arithmetic{Op: op, A: a, B: b, Defined: true}
	switch op {
	case OpSubtract:
		r.Value = a - b
	case OpMultiply:
		r.Value = a * b
	case OpDivide:
		if b == 0 {
			r.Defined = false
			return r
		}
		r.Quotient, r.Remainder = a/b, a%b
		r.Value = r.Quotient
	default:
		r.Op = OpAdd
		r.Value = a + b
	}
	return r
}

// Expression renders "a op b".
func (r Arithmetic) Expression() string {
	return fmt.Sprintf("%d %s %d", r.A, r.Op.Symbol(), r.B)
}

// Answer renders the result for display; blank when undefined.
func (r Arithmetic) Answer() string {
	if !r.Defined {
		return ""
	}
	if r.Op == OpDivide && r.Remainder != 0 {
		return fmt.Sprintf("%d R %d", r.Quotient, r.Remainder)
	}
	return strconv.Itoa(r.Value)
}

// MarshalJSON omits every result field when the result is undefined.
func (r Arithmetic) MarshalJSON() ([]byte, error) {
	type out struct {
		Op         Op     `json:"op"`
		A          int    `json:"a"`
		B          int    `json:"b"`
		Defined    bool   `json:"defined"`
		Value      *int   `json:"value,omitempty"`
		Quotient   *int   `json:"quotient,omitempty"`
		Remainder  *int   `json:"remainder,omitempty"`
		Expression string `json:"expression"`
		Answer     string `json:"answer"`
	}
	o := out{Op: r.Op, A: r.A, B: r.B, Defined: r.Defined, Expression: r.Expression(), Answer: r.Answer()}
	if r.Defined {
		o.Value = &r.Value
		if r.Op == OpDivide {
			o.Quotient, o.Remainder = &r.Quotient, &r.Remainder
		}
	}
	return json.Marshal(o)
}

// operatorRe matches the first operator symbol or word between two operands.
var operatorRe = regexp.MustCompile(`\+|−|-|\*|×|÷|/|\b(?:plus|add|minus|subtract|take away|times|x|multiplied|divided|over)\b`)

// leadingVerbRe matches an operation verb written before the first operand.
var leadingVerbRe = regexp.MustCompile(`\b(?:add|sum|plus|subtract|take|minus|multiply|times|product|divide|quotient)\b`)

// reversedRe marks "subtract a from b" and "divide a into b" phrasing.
var reversedRe = regexp.MustCompile(`^\s*(?:from|into)\s*$`)

// DetectOperator reads the operator written between the first two numbers.
// Without one there, an operation verb before the first number decides
// ("divide 20 by 4"). Defaults to add.
func DetectOperator(text string) Op {
	locs := digitRunRe.FindAllStringIndex(text, 2)
	if len(locs) < 2 {
		return OpAdd
	}
	if tok := operatorRe.FindString(text[locs[0][1]:locs[1][0]]); tok != "" {
		return opFor(tok)
	}
	return opFor(leadingVerbRe.FindString(text[:locs[0][0]]))
}

// operandsReversed reports whether the second number is the one acted on,
// as in "subtract 5 from 12".
func operandsReversed(text string) bool {
	locs := digitRunRe.FindAllStringIndex(text, 2)
	if len(locs) < 2 || !leadingVerbRe.MatchString(text[:locs[0][0]]) {
		return false
	}
	return reversedRe.MatchString(text[locs[0][1]:locs[1][0]])
}

func opFor(tok string) Op {
	switch tok {
	case "-", "−", "minus", "subtract", "take away", "take":
		return OpSubtract
	case "*", "×", "x", "times", "multiplied", "multiply", "product":
		return OpMultiply
	case "/", "÷", "divided", "over", "divide", "quotient":
		return OpDivide
	default:
		return OpAdd
	}
}
