// Package output provides formatters for writing a batch.RowBatch to an
// io.Writer in one of several textual formats, for the CLI demo in
// cmd/flowsql.
//
// Grounded on Vegasq-parcat/output/formatter.go's Formatter interface,
// adapted from its []map[string]interface{} row model to the typed
// batch.RowBatch this module's core operates on.
package output

import (
	"io"

	"github.com/flowsql/flowsql/batch"
)

// Formatter converts a typed row batch to one of the CLI's output
// formats.
type Formatter interface {
	// Format writes b in the formatter's specific format.
	Format(b batch.RowBatch) error
	// SetOutput changes the output writer.
	SetOutput(w io.Writer)
}
