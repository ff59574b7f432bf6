package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrganizeCommandMovesFiles(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(source, "script.py"), []byte("print('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "organize", "--source", source, "--target", target)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}

	if !strings.Contains(out, "Documents") || !strings.Contains(out, "Code") {
		t.Errorf("summary missing categories: %q", out)
	}
	if strings.Contains(out, "Images") {
		t.Errorf("empty category should not be printed: %q", out)
	}

	matches, err := filepath.Glob(filepath.Join(target, "Documents", "*", "notes.txt"))
	if err != nil || len(matches) != 1 {
		t.Errorf("notes.txt not moved into Documents: %v %v", matches, err)
	}
}

func TestOrganizeCommandRequiresFlags(t *testing.T) {
	if _, err := runCommand(t, "organize"); err == nil {
		t.Fatal("expected error when source and target are missing")
	}
}

func TestOrganizeCommandMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := runCommand(t, "organize", "--source", missing, "--target", t.TempDir()); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
