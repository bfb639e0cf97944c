// Package input provides an in-memory row-batch loader for the CLI demo
// — JSON Lines decoding against a declared schema. It is deliberately not
// a connector (spec.md §1 puts connector I/O out of scope): it has no
// notion of a source, offsets, or streaming; it just turns a byte slice
// into one batch.RowBatch for cmd/flowsql to hand to a transform.
package input

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/segmentio/encoding/json"

	"github.com/flowsql/flowsql/batch"
)

// DecodeJSONLines parses data as newline-delimited JSON objects and
// projects each one onto schema, field by field in schema order. A field
// absent from a line's object, or explicitly JSON null, becomes a typed
// NULL; a present value is coerced to the field's batch.DataType.
func DecodeJSONLines(data []byte, schema batch.Schema) (batch.RowBatch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var rows [][]batch.Value
	for {
		var obj map[string]json.RawMessage
		err := dec.Decode(&obj)
		if err != nil {
			if err == io.EOF {
				break
			}
			return batch.RowBatch{}, fmt.Errorf("input: decode json line %d: %w", len(rows)+1, err)
		}
		row, err := decodeRow(obj, schema)
		if err != nil {
			return batch.RowBatch{}, fmt.Errorf("input: line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return batch.NewRowBatch(schema, rows)
}

func decodeRow(obj map[string]json.RawMessage, schema batch.Schema) ([]batch.Value, error) {
	row := make([]batch.Value, schema.Len())
	for i, f := range schema.Fields {
		raw, ok := obj[f.Name]
		if !ok || string(raw) == "null" {
			row[i] = batch.Null(f.Type)
			continue
		}
		v, err := decodeValue(raw, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func decodeValue(raw json.RawMessage, t batch.DataType) (batch.Value, error) {
	switch t.Kind {
	case batch.KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return batch.Value{}, err
		}
		return batch.Bool(b), nil
	case batch.KindInt32:
		var n int32
		if err := json.Unmarshal(raw, &n); err != nil {
			return batch.Value{}, err
		}
		return batch.Int32(n), nil
	case batch.KindInt64, batch.KindTimestamp:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return batch.Value{}, err
		}
		if t.Kind == batch.KindTimestamp {
			return batch.Timestamp(n, t.Unit), nil
		}
		return batch.Int64(n), nil
	case batch.KindFloat32:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return batch.Value{}, err
		}
		return batch.Float32Val(float32(f)), nil
	case batch.KindFloat64, batch.KindDecimal:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return batch.Value{}, err
		}
		if t.Kind == batch.KindDecimal {
			return batch.Decimal(f, t.Precision, t.Scale), nil
		}
		return batch.Float64Val(f), nil
	case batch.KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return batch.Value{}, err
		}
		return batch.Str(s), nil
	case batch.KindBytes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return batch.Value{}, err
		}
		return batch.Bytes([]byte(s)), nil
	case batch.KindArray:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return batch.Value{}, err
		}
		elemType := batch.NullType()
		if t.Elem != nil {
			elemType = *t.Elem
		}
		vals := make([]batch.Value, len(items))
		for i, item := range items {
			v, err := decodeValue(item, elemType)
			if err != nil {
				return batch.Value{}, err
			}
			vals[i] = v
		}
		return batch.Array(elemType, vals), nil
	case batch.KindStruct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return batch.Value{}, err
		}
		vals := make([]batch.Value, len(t.Fields))
		for i, sf := range t.Fields {
			fraw, ok := obj[sf.Name]
			if !ok || string(fraw) == "null" {
				vals[i] = batch.Null(sf.Type)
				continue
			}
			v, err := decodeValue(fraw, sf.Type)
			if err != nil {
				return batch.Value{}, err
			}
			vals[i] = v
		}
		return batch.StructVal(t.Fields, vals), nil
	default:
		return batch.Null(t), nil
	}
}
