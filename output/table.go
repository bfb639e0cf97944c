package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/flowsql/flowsql/batch"
)

// TableFormatter renders a batch as an aligned ASCII table, for
// interactive terminal use — the CLI's third output format alongside
// JSONLFormatter and CSVFormatter.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a table formatter writing to w.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

func (t *TableFormatter) SetOutput(w io.Writer) { t.writer = w }

func (t *TableFormatter) Format(b batch.RowBatch) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(b.Schema.Names())
	table.SetAutoFormatHeaders(false)

	for _, row := range b.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v.IsNull() {
				record[i] = "NULL"
			} else {
				record[i] = v.String()
			}
		}
		table.Append(record)
	}
	table.Render()
	return nil
}
