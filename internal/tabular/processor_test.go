package tabular

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readOutput(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return rows
}

func identity(row Row) (Row, bool) { return row, true }

const sampleCSV = "name,age,city\nalice,30,berlin\nbob,25,lisbon\ncarol,41,oslo\n"

func TestNewRequiresInputFile(t *testing.T) {
	dir := t.TempDir()
	_, err := New(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"), discardLogger())
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestProcessRequiresTransform(t *testing.T) {
	input := writeInput(t, sampleCSV)
	p, err := New(input, filepath.Join(t.TempDir(), "out.csv"), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Process(nil, Options{}); err == nil {
		t.Fatal("expected error for nil transform")
	}
}

func TestProcessIdentityKeepsAllRows(t *testing.T) {
	input := writeInput(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	n, err := p.Process(identity, Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n != 3 {
		t.Errorf("written = %d, want 3", n)
	}

	rows := readOutput(t, output)
	if len(rows) != 4 {
		t.Fatalf("output rows = %d, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != "name,age,city" {
		t.Errorf("header = %v, input order not preserved", rows[0])
	}
	if strings.Join(rows[1], ",") != "alice,30,berlin" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestProcessFiltersRows(t *testing.T) {
	input := writeInput(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	dropBob := func(row Row) (Row, bool) {
		return row, row["name"] != "bob"
	}
	n, err := p.Process(dropBob, Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	rows := readOutput(t, output)
	for _, row := range rows[1:] {
		if row[0] == "bob" {
			t.Error("filtered row leaked into output")
		}
	}
}

func TestProcessTransformAddsColumn(t *testing.T) {
	input := writeInput(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	upper := func(row Row) (Row, bool) {
		row["name_upper"] = strings.ToUpper(row["name"])
		return row, true
	}
	if _, err := p.Process(upper, Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	rows := readOutput(t, output)
	// New columns land after the input columns.
	if strings.Join(rows[0], ",") != "name,age,city,name_upper" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][3] != "ALICE" {
		t.Errorf("derived column = %q, want ALICE", rows[1][3])
	}
}

func TestProcessExplicitOutputFields(t *testing.T) {
	input := writeInput(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{OutputFields: []string{"city", "name"}}
	if _, err := p.Process(identity, opts); err != nil {
		t.Fatalf("Process: %v", err)
	}

	rows := readOutput(t, output)
	if strings.Join(rows[0], ",") != "city,name" {
		t.Errorf("header = %v", rows[0])
	}
	if strings.Join(rows[1], ",") != "berlin,alice" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestProcessMaxRows(t *testing.T) {
	input := writeInput(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	n, err := p.Process(identity, Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}
	if rows := readOutput(t, output); len(rows) != 3 {
		t.Errorf("output rows = %d, want header + 2", len(rows))
	}
}

func TestProcessShortRecordFillsEmpty(t *testing.T) {
	input := writeInput(t, "a,b,c\n1,2\n")
	output := filepath.Join(t.TempDir(), "out.csv")
	p, err := New(input, output, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Process(identity, Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	rows := readOutput(t, output)
	if len(rows) != 2 || rows[1][2] != "" {
		t.Errorf("missing column should be empty, got %v", rows)
	}
}

func TestProcessEmptyInputFails(t *testing.T) {
	input := writeInput(t, "")
	p, err := New(input, filepath.Join(t.TempDir(), "out.csv"), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Process(identity, Options{}); err == nil {
		t.Fatal("expected error for input without header")
	}
}
