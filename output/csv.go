package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/flowsql/flowsql/batch"
)

// CSVFormatter writes a batch as CSV with a header row, column order
// taken from the batch's schema rather than re-derived per row (the
// typed RowBatch model has no heterogeneous-schema case to guard
// against, unlike Vegasq-parcat/output/csv.go's map[string]interface{}
// rows, which this is grounded on).
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a CSV formatter writing to w.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

func (c *CSVFormatter) SetOutput(w io.Writer) { c.writer = w }

func (c *CSVFormatter) Format(b batch.RowBatch) error {
	csvWriter := csv.NewWriter(c.writer)

	names := b.Schema.Names()
	if err := csvWriter.Write(names); err != nil {
		return fmt.Errorf("output: write csv header: %w", err)
	}

	record := make([]string, len(names))
	for _, row := range b.Rows {
		for i, v := range row {
			record[i] = formatCSVValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("output: write csv row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("output: flush csv writer: %w", err)
	}
	return nil
}

// formatCSVValue renders v for a CSV cell, prefixing values that start
// with a formula-triggering character so spreadsheet applications opening
// the file don't execute them as formulas — the same CSV-injection guard
// Vegasq-parcat/output/csv.go's formatValue applies.
func formatCSVValue(v batch.Value) string {
	if v.IsNull() {
		return ""
	}
	s := v.String()
	if v.Type().Kind == batch.KindString && len(s) > 0 {
		switch s[0] {
		case '=', '+', '-', '@', '\t', '\r', '\n', '|':
			return "'" + s
		}
	}
	return s
}
