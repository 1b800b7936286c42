package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.txt")
	if err := os.WriteFile(in, []byte("CLI Book\n\nSome text.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "book.epub")

	output, err := runCLI(t, "convert", in, "-o", out)
	if err != nil {
		t.Fatalf("convert: %v\n%s", err, output)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.txt")
	if err := os.WriteFile(in, []byte("Info Book\n\nBody text here.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mid := filepath.Join(dir, "book.epub")
	if output, err := runCLI(t, "convert", in, "-o", mid); err != nil {
		t.Fatalf("convert: %v\n%s", err, output)
	}

	output, err := runCLI(t, "info", mid)
	if err != nil {
		t.Fatalf("info: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Info Book") {
		t.Errorf("info output missing title:\n%s", output)
	}
	if !strings.Contains(output, "EPUB") {
		t.Errorf("info output missing format:\n%s", output)
	}
}

func TestValidateCommandStrict(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.txt")
	// No author or language metadata; strict mode should fail on warnings.
	if err := os.WriteFile(in, []byte("Bare Book\n\nText.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mid := filepath.Join(dir, "book.epub")
	if output, err := runCLI(t, "convert", in, "-o", mid); err != nil {
		t.Fatalf("convert: %v\n%s", err, output)
	}

	if output, err := runCLI(t, "validate", mid); err != nil {
		t.Fatalf("validate: %v\n%s", err, output)
	}
	validateStrict = false
	if _, err := runCLI(t, "validate", "--strict", mid); err == nil {
		t.Error("strict validate passed despite warnings")
	}
	validateStrict = false
}

func TestFormatForOutput(t *testing.T) {
	if f, err := formatForOutput("x.epub"); err != nil || f.Extension() != "epub" {
		t.Errorf("formatForOutput(x.epub) = %v, %v", f, err)
	}
	if _, err := formatForOutput("x.unknown"); err == nil {
		t.Error("expected error for unknown extension")
	}
}
