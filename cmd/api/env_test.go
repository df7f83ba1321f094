package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvKeepsProcessEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculator.env")
	content := "SESSION_MAX=7\nHTTP_ADDR=:9999\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	t.Setenv(envFileVar, path)
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("SESSION_MAX", "")
	os.Unsetenv("SESSION_MAX")

	if err := loadDotEnv(); err != nil {
		t.Fatalf("loading env file: %v", err)
	}

	if got := os.Getenv("SESSION_MAX"); got != "7" {
		t.Fatalf("expected SESSION_MAX from file, got %q", got)
	}
	if got := os.Getenv("HTTP_ADDR"); got != ":7000" {
		t.Fatalf("expected process HTTP_ADDR to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Setenv(envFileVar, filepath.Join(t.TempDir(), "absent.env"))

	if err := loadDotEnv(); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
