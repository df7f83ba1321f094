package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnknownKey is returned when a keypad label maps to no action.
var ErrUnknownKey = errors.New("unknown key")

// KeyKind groups keypad keys by the engine action they trigger.
type KeyKind string

const (
	KindDigit    KeyKind = "digit"
	KindDecimal  KeyKind = "decimal"
	KindClear    KeyKind = "clear"
	KindSign     KeyKind = "sign"
	KindPercent  KeyKind = "percent"
	KindOperator KeyKind = "operator"
)

// Classify returns the action group of key.
func Classify(key string) (KeyKind, error) {
	k := strings.TrimSpace(key)

	switch {
	case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
		return KindDigit, nil
	case k == "." || k == ",":
		return KindDecimal, nil
	case strings.EqualFold(k, "AC") || strings.EqualFold(k, "C"):
		return KindClear, nil
	case k == "+/-" || k == "±":
		return KindSign, nil
	case k == "%":
		return KindPercent, nil
	}

	if _, err := ParseOperator(k); err == nil {
		return KindOperator, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Press applies a single keypad key.
func (e *Engine) Press(key string) error {
	kind, err := Classify(key)
	if err != nil {
		return err
	}

	k := strings.TrimSpace(key)
	switch kind {
	case KindDigit:
		return e.EnterDigit(int(k[0] - '0'))
	case KindDecimal:
		e.EnterDecimalPoint()
	case KindClear:
		e.Reset()
	case KindSign:
		e.ToggleSign()
	case KindPercent:
		e.ApplyPercentage()
	case KindOperator:
		op, err := ParseOperator(k)
		if err != nil {
			return err
		}
		return e.ApplyOperator(op)
	}
	return nil
}

// ParseKeys splits a compact key sequence such as "12.5×2=" or "AC 7 +/- ="
// into individual keys. Whitespace separates nothing and is dropped.
func ParseKeys(seq string) ([]string, error) {
	var keys []string

	for rest := seq; rest != ""; {
		switch {
		case len(rest) >= 2 && strings.EqualFold(rest[:2], "AC"):
			keys = append(keys, "AC")
			rest = rest[2:]
			continue
		case strings.HasPrefix(rest, "+/-"):
			keys = append(keys, "+/-")
			rest = rest[3:]
			continue
		}

		r, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
		if unicode.IsSpace(r) {
			continue
		}

		key := string(r)
		if _, err := Classify(key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, nil
}
