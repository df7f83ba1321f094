// Package engine implements the keypad calculator state machine: digit and
// decimal-point entry, sign and percentage, and chained binary operators that
// are applied one step late, the way a pocket calculator does it.
//
// An Engine is not safe for concurrent use. Callers that share one must
// serialize access (see package session).
package engine

import (
	"errors"
	"fmt"
)

// ErrDigitOutOfRange is returned by EnterDigit for values outside 0-9.
var ErrDigitOutOfRange = errors.New("digit out of range")

const initialDecimalScale = 0.1

// Engine holds the state of one calculator session.
type Engine struct {
	input        float64
	accumulator  float64
	pending      Operator
	decimalMode  bool
	decimalScale float64
}

// New returns an engine in its cleared state.
func New() *Engine {
	e := &Engine{}
	e.Reset()
	return e
}

// EnterDigit appends d to the operand under construction. In decimal mode the
// digit lands at the current place value; otherwise it shifts the integer
// part left. Magnitude is not bounded.
func (e *Engine) EnterDigit(d int) error {
	if d < 0 || d > 9 {
		return fmt.Errorf("%w: %d", ErrDigitOutOfRange, d)
	}

	if e.decimalMode {
		e.input += float64(d) * e.decimalScale
		e.decimalScale /= 10
		return nil
	}

	e.input = e.input*10 + float64(d)
	return nil
}

// Reset clears every field (the AC key).
func (e *Engine) Reset() {
	e.input = 0
	e.accumulator = 0
	e.decimalMode = false
	e.decimalScale = initialDecimalScale
	e.pending = OpNone
}

func (e *Engine) ToggleSign() {
	e.input = -e.input
}

func (e *Engine) ApplyPercentage() {
	e.input = e.input / 100
}

// EnterDecimalPoint switches to fractional entry. The place value is left as
// is, so pressing the key twice changes nothing.
func (e *Engine) EnterDecimalPoint() {
	e.decimalMode = true
}

// ApplyOperator resolves the pending operator against the current input and
// then records op as the new pending operator. Equals moves the result into
// the input so it can be the left operand of the next operation.
func (e *Engine) ApplyOperator(op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownOperator, op)
	}

	e.commitPending()
	e.pending = op

	if op == OpEquals {
		e.input = e.accumulator
		e.accumulator = 0
		return nil
	}

	e.input = 0
	return nil
}

// commitPending folds input into the accumulator. Division by zero is left to
// IEEE semantics and yields Inf or NaN.
func (e *Engine) commitPending() {
	switch e.pending {
	case OpAdd:
		e.accumulator += e.input
	case OpSubtract:
		e.accumulator -= e.input
	case OpMultiply:
		e.accumulator *= e.input
	case OpDivide:
		e.accumulator /= e.input
	default:
		e.accumulator = e.input
	}

	e.decimalMode = false
	e.decimalScale = initialDecimalScale
}

// Display returns the text shown on the calculator screen.
//
// While at most one fractional digit has been typed the decimal marker is
// appended, so "3." is visible right after the point key. The marker hides
// once decimalScale reaches 0.01.
func (e *Engine) Display() string {
	s := FormatNumber(e.input)
	if e.decimalMode && e.decimalScale > 0.01 {
		s += "."
	}
	return s
}

func (e *Engine) Input() float64 { return e.input }
func (e *Engine) Accumulator() float64 { return e.accumulator }
func (e *Engine) Pending() Operator { return e.pending }
func (e *Engine) DecimalMode() bool { return e.decimalMode }
func (e *Engine) DecimalScale() float64 { return e.decimalScale }

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Display     string
	Input       float64
	Accumulator float64
	Pending     Operator
	DecimalMode bool
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Display:     e.Display(),
		Input:       e.input,
		Accumulator: e.accumulator,
		Pending:     e.pending,
		DecimalMode: e.decimalMode,
	}
}
