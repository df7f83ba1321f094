package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperator is returned for operators outside the supported set.
var ErrUnknownOperator = errors.New("unknown operator")

// Operator is a binary operation selected on the keypad. The zero value,
// OpNone, means no operator is pending.
type Operator int

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEquals
)

var operatorNames = [...]string{
	OpNone:     "none",
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
	OpEquals:   "equals",
}

func (op Operator) String() string {
	if op < OpNone || op > OpEquals {
		return fmt.Sprintf("operator(%d)", int(op))
	}
	return operatorNames[op]
}

// Valid reports whether op can be applied.
func (op Operator) Valid() bool {
	return op >= OpAdd && op <= OpEquals
}

// ParseOperator accepts operator names ("add", "equals", ...) and keypad
// symbols ("+", "−", "×", "÷", "=", ...).
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "plus", "+":
		return OpAdd, nil
	case "subtract", "minus", "-", "−":
		return OpSubtract, nil
	case "multiply", "times", "*", "×", "x":
		return OpMultiply, nil
	case "divide", "/", "÷":
		return OpDivide, nil
	case "equals", "=":
		return OpEquals, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
