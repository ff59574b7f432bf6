// Package tabular streams large delimited files through a per-row
// transform without ever holding the whole file in memory.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"
)

// Row is one input or output record keyed by column name.
type Row map[string]string

// TransformFunc maps an input row to an output row. Returning false
// skips the row entirely.
type TransformFunc func(Row) (Row, bool)

// Options tunes a processing run.
type Options struct {
	// OutputFields fixes the output column order. Empty derives it from
	// the input header plus any new columns the transform introduced.
	OutputFields []string
	// MaxRows caps the number of rows written; 0 means unlimited.
	MaxRows int
}

// progressEvery is the row interval between throughput log lines.
const progressEvery = 10000

// Processor streams one CSV file into another.
type Processor struct {
	inputPath  string
	outputPath string
	logger     *slog.Logger
}

// New validates the paths: the input must exist, an existing output is
// overwritten with a warning.
func New(inputPath, outputPath string, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("input file %s: %w", inputPath, err)
	}
	if _, err := os.Stat(outputPath); err == nil {
		logger.Warn("output file will be overwritten", "file", outputPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("output file %s: %w", outputPath, err)
	}
	return &Processor{inputPath: inputPath, outputPath: outputPath, logger: logger}, nil
}

// Process streams the input through transform and writes the surviving
// rows. It returns the number of rows written. Rows the reader cannot
// parse are logged and skipped.
func (p *Processor) Process(transform TransformFunc, opts Options) (int, error) {
	if transform == nil {
		return 0, errors.New("transform function is required")
	}

	in, err := os.Open(p.inputPath)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(p.outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("input file has no header row")
		}
		return 0, fmt.Errorf("read header: %w", err)
	}

	writer := csv.NewWriter(out)
	var fields []string
	written := 0
	rowNum := 0
	start := time.Now()

	for {
		if opts.MaxRows > 0 && written >= opts.MaxRows {
			break
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			p.logger.Error("skipping unreadable row", "row", rowNum, "error", err)
			continue
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}

		result, keep := transform(row)
		if !keep || result == nil {
			continue
		}

		if fields == nil {
			fields = p.resolveFields(opts.OutputFields, header, result)
			if err := writer.Write(fields); err != nil {
				return written, fmt.Errorf("write header: %w", err)
			}
		}

		outRecord := make([]string, len(fields))
		for i, name := range fields {
			outRecord[i] = result[name]
		}
		if err := writer.Write(outRecord); err != nil {
			return written, fmt.Errorf("write row %d: %w", rowNum, err)
		}

		written++
		if written%progressEvery == 0 {
			p.logger.Info("processing", "rows", written)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("flush output: %w", err)
	}

	elapsed := time.Since(start)
	rate := float64(written)
	if elapsed > 0 {
		rate = float64(written) / elapsed.Seconds()
	}
	p.logger.Info("finished processing",
		"rows", written,
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"rows_per_sec", fmt.Sprintf("%.2f", rate),
	)
	return written, nil
}

// resolveFields keeps the input column order for columns the first
// emitted row still carries, then appends transform-added columns in
// sorted order.
func (p *Processor) resolveFields(explicit, header []string, first Row) []string {
	if len(explicit) > 0 {
		return explicit
	}
	fields := make([]string, 0, len(first))
	seen := make(map[string]struct{}, len(first))
	for _, name := range header {
		if _, ok := first[name]; ok {
			fields = append(fields, name)
			seen[name] = struct{}{}
		}
	}
	var extra []string
	for name := range first {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}
