package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		seq  string
		want []string
	}{
		{seq: "12.5×2=", want: []string{"1", "2", ".", "5", "×", "2", "="}},
		{seq: "AC 7 +/- =", want: []string{"AC", "7", "+/-", "="}},
		{seq: "ac9%", want: []string{"AC", "9", "%"}},
		{seq: "1-2*3/4", want: []string{"1", "-", "2", "*", "3", "/", "4"}},
		{seq: "", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.seq, func(t *testing.T) {
			got, err := ParseKeys(tc.seq)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseKeysRejectsUnknown(t *testing.T) {
	_, err := ParseKeys("5?3")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want KeyKind
	}{
		{key: "7", want: KindDigit},
		{key: ",", want: KindDecimal},
		{key: "C", want: KindClear},
		{key: "±", want: KindSign},
		{key: "%", want: KindPercent},
		{key: "÷", want: KindOperator},
		{key: "equals", want: KindOperator},
	}

	for _, tc := range tests {
		got, err := Classify(tc.key)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.key, tc.want, got)
		}
	}

	if _, err := Classify("12"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey for multi-digit key, got %v", err)
	}
}

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"add":      OpAdd,
		"−":        OpSubtract,
		"Multiply": OpMultiply,
		"÷":        OpDivide,
		"=":        OpEquals,
	}

	for in, want := range tests {
		got, err := ParseOperator(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseOperator("modulo"); !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestPressUnknownKeyLeavesState(t *testing.T) {
	e := New()
	_ = e.Press("4")

	if err := e.Press("sqrt"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if got := e.Display(); got != "4" {
		t.Fatalf("expected display %q, got %q", "4", got)
	}
}
