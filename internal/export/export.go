// Package export serialises crawl results to disk. One call writes one
// file named <stem>.<ext>, where the extension follows the format.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Lex1797/automation-scripts/pkg/types"
)

// Format selects the serialisation for exported results.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrNoRecords signals an export call on an empty result. Callers log it
// rather than treating it as fatal.
var ErrNoRecords = errors.New("no records to export")

// ErrUnsupportedFormat signals an output format outside the fixed set.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// header is the field order shared by the tabular formats; the JSON keys
// carry the same names via struct tags.
var header = []string{"title", "url", "summary", "source_url", "timestamp"}

// ParseFormat maps a config string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Export writes every record of result to <stem>.<ext> and returns the
// path written.
func Export(result *types.CrawlResult, stem string, format Format) (string, error) {
	if result == nil || len(result.Records) == 0 {
		return "", ErrNoRecords
	}
	if strings.TrimSpace(stem) == "" {
		return "", errors.New("output stem must not be empty")
	}

	path := stem + "." + format.Ext()
	switch format {
	case FormatJSON, FormatCSV:
		fh, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		werr := writeTo(fh, result.Records, format)
		cerr := fh.Close()
		if werr != nil {
			return "", werr
		}
		if cerr != nil {
			return "", fmt.Errorf("close %s: %w", path, cerr)
		}
	case FormatXLSX:
		if err := writeXLSX(path, result.Records); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return path, nil
}

func writeTo(w io.Writer, records []types.PageRecord, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// writeJSON emits a flat array of objects, one per record.
func writeJSON(w io.Writer, records []types.PageRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// writeCSV emits a header line followed by one delimited row per record.
func writeCSV(w io.Writer, records []types.PageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Title,
			rec.URL,
			rec.Summary,
			rec.SourceURL,
			rec.Timestamp.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv record for %s: %w", rec.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// writeXLSX emits a single sheet with a header row and one row per record.
func writeXLSX(path string, records []types.PageRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("xlsx header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("xlsx header value: %w", err)
		}
	}

	for i, rec := range records {
		values := []string{
			rec.Title,
			rec.URL,
			rec.Summary,
			rec.SourceURL,
			rec.Timestamp.Format(time.RFC3339Nano),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("xlsx cell for row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("xlsx value for row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
