package output

import (
	"fmt"
	"io"

	json "github.com/segmentio/encoding/json"

	"github.com/flowsql/flowsql/batch"
)

// JSONLFormatter writes one JSON object per line, one per row — the same
// shape input.DecodeJSONLines reads back (Vegasq-parcat/output/json.go's
// JSONFormatter, adapted to the typed batch.RowBatch row model and
// re-targeted at segmentio/encoding/json, the codec this module already
// uses for JSON function support).
type JSONLFormatter struct {
	writer io.Writer
}

// NewJSONLFormatter creates a JSON-lines formatter writing to w.
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

func (j *JSONLFormatter) SetOutput(w io.Writer) { j.writer = w }

func (j *JSONLFormatter) Format(b batch.RowBatch) error {
	names := b.Schema.Names()
	encoder := json.NewEncoder(j.writer)
	for _, row := range b.Rows {
		obj := make(map[string]any, len(names))
		for i, name := range names {
			obj[name] = valueToNative(row[i])
		}
		if err := encoder.Encode(obj); err != nil {
			return fmt.Errorf("output: encode json line: %w", err)
		}
	}
	return nil
}

// valueToNative mirrors sql.valueToNative's Value->any conversion (that
// one is package-private to sql); kept in sync by hand since there are
// only a handful of batch.Kind cases.
func valueToNative(v batch.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Type().Kind {
	case batch.KindBoolean:
		return v.AsBool()
	case batch.KindInt32:
		return v.AsInt32()
	case batch.KindInt64:
		return v.AsInt64()
	case batch.KindFloat32, batch.KindFloat64, batch.KindDecimal:
		return v.AsFloat64()
	case batch.KindString:
		return v.AsString()
	case batch.KindBytes:
		return string(v.AsBytes())
	case batch.KindTimestamp:
		return v.AsInt64()
	case batch.KindArray:
		arr := v.AsArray()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = valueToNative(e)
		}
		return out
	case batch.KindStruct:
		st := v.AsStruct()
		out := make(map[string]any, len(st.Fields))
		for i, f := range st.Fields {
			out[f.Name] = valueToNative(st.Values[i])
		}
		return out
	default:
		return nil
	}
}
