package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunPrintsDisplayPerLine(t *testing.T) {
	in := strings.NewReader("5+3\n=\n=\n2^\nAC\n")
	var out bytes.Buffer

	if err := run(in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "3\n8\n8\nerror: unknown key: \"^\"\n8\n0\n"
	if got := out.String(); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
}
