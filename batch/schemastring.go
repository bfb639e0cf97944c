package batch

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSchemaString parses the two schema-string forms spec.md §6 names:
//
//  1. "struct<field:type, ...>"
//  2. "name Type [NOT NULL] (, name Type ...)+" without the struct<> wrapper
//
// Backtick-quoted field names are allowed in both. Grounded on
// Vegasq-parcat/query/parser.go's hand-written recursive-descent style —
// the grammar here is small enough that a parser-combinator library (none
// of which appear anywhere in the retrieval pack for this kind of grammar)
// would be overkill.
func ParseSchemaString(s string) (Schema, error) {
	p := &schemaStringParser{input: s}
	p.skipSpace()
	if strings.HasPrefix(p.rest(), "struct<") {
		fields, err := p.parseStructFields()
		if err != nil {
			return Schema{}, err
		}
		p.skipSpace()
		if !p.atEnd() {
			return Schema{}, fmt.Errorf("schema string: unexpected trailing input %q", p.rest())
		}
		return NewSchema(fields)
	}
	fields, err := p.parseColumnList()
	if err != nil {
		return Schema{}, err
	}
	return NewSchema(fields)
}

// ParseDataType parses a single data-type production: "array<T> |
// struct<name:T, ...> | primitive".
func ParseDataType(s string) (DataType, error) {
	p := &schemaStringParser{input: s}
	t, err := p.parseType()
	if err != nil {
		return DataType{}, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return DataType{}, fmt.Errorf("data type: unexpected trailing input %q", p.rest())
	}
	return t, nil
}

type schemaStringParser struct {
	input string
	pos   int
}

func (p *schemaStringParser) rest() string { return p.input[p.pos:] }
func (p *schemaStringParser) atEnd() bool  { return p.pos >= len(p.input) }

func (p *schemaStringParser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		break
	}
}

func (p *schemaStringParser) peekByte() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *schemaStringParser) expect(b byte) error {
	p.skipSpace()
	if p.atEnd() || p.input[p.pos] != b {
		return fmt.Errorf("schema string: expected %q at position %d, got %q", b, p.pos, p.rest())
	}
	p.pos++
	return nil
}

// parseColumnList parses "name Type [NOT NULL] (, name Type [NOT NULL])*".
func (p *schemaStringParser) parseColumnList() ([]Field, error) {
	var fields []Field
	for {
		p.skipSpace()
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if strings.HasPrefix(strings.ToUpper(p.rest()), "NOT NULL") {
			p.pos += len("NOT NULL")
		}
		fields = append(fields, Field{Name: name, Type: t})
		p.skipSpace()
		if p.peekByte() == ',' {
			p.pos++
			continue
		}
		break
	}
	return fields, nil
}

// parseStructFields parses "struct<name:type, ...>" and returns the field
// list (not wrapped in the Struct DataType itself, so the top-level
// ParseSchemaString form can hand it straight to NewSchema).
func (p *schemaStringParser) parseStructFields() ([]Field, error) {
	if err := p.expectKeyword("struct"); err != nil {
		return nil, err
	}
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var fields []Field
	p.skipSpace()
	if p.peekByte() == '>' {
		p.pos++
		return fields, nil
	}
	for {
		p.skipSpace()
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: t})
		p.skipSpace()
		if p.peekByte() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return fields, nil
}

func (p *schemaStringParser) expectKeyword(kw string) error {
	p.skipSpace()
	if len(p.rest()) < len(kw) || !strings.EqualFold(p.rest()[:len(kw)], kw) {
		return fmt.Errorf("schema string: expected %q at position %d, got %q", kw, p.pos, p.rest())
	}
	p.pos += len(kw)
	return nil
}

func (p *schemaStringParser) parseIdentifier() (string, error) {
	p.skipSpace()
	if p.peekByte() == '`' {
		p.pos++
		start := p.pos
		for !p.atEnd() && p.input[p.pos] != '`' {
			p.pos++
		}
		if p.atEnd() {
			return "", fmt.Errorf("schema string: unterminated backtick identifier")
		}
		name := p.input[start:p.pos]
		p.pos++ // closing backtick
		return name, nil
	}
	start := p.pos
	for !p.atEnd() {
		c := p.input[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return "", fmt.Errorf("schema string: expected identifier at position %d, got %q", p.pos, p.rest())
	}
	return p.input[start:p.pos], nil
}

// parseType parses a single primitive, array<T>, struct<...>, or
// decimal(p,s) type.
func (p *schemaStringParser) parseType() (DataType, error) {
	p.skipSpace()
	rest := p.rest()
	lower := strings.ToLower(rest)

	switch {
	case strings.HasPrefix(lower, "array<"):
		p.pos += len("array<")
		elem, err := p.parseType()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect('>'); err != nil {
			return DataType{}, err
		}
		return ArrayType(elem), nil
	case strings.HasPrefix(lower, "struct<"):
		fields, err := p.parseStructFields()
		if err != nil {
			return DataType{}, err
		}
		structFields := make([]StructField, len(fields))
		for i, f := range fields {
			structFields[i] = StructField{Name: f.Name, Type: f.Type}
		}
		return StructType(structFields), nil
	case strings.HasPrefix(lower, "decimal"):
		p.pos += len("decimal")
		p.skipSpace()
		if p.peekByte() != '(' {
			return DecimalType(10, 0), nil
		}
		p.pos++
		precision, err := p.parseIntLiteral()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect(','); err != nil {
			return DataType{}, err
		}
		scale, err := p.parseIntLiteral()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect(')'); err != nil {
			return DataType{}, err
		}
		return DecimalType(precision, scale), nil
	}

	name, err := p.parseTypeName()
	if err != nil {
		return DataType{}, err
	}
	switch strings.ToLower(name) {
	case "bigint":
		return Int64Type(), nil
	case "int":
		return Int32Type(), nil
	case "smallint", "tinyint":
		return Int32Type(), nil
	case "float":
		return Float32Type(), nil
	case "double":
		return Float64Type(), nil
	case "string":
		return StringType(), nil
	case "bytes":
		return BytesType(), nil
	case "boolean", "bool":
		return BooleanType(), nil
	case "timestamp":
		return TimestampType(UnitMilli), nil
	default:
		return DataType{}, fmt.Errorf("schema string: unknown type %q", name)
	}
}

func (p *schemaStringParser) parseTypeName() (string, error) {
	start := p.pos
	for !p.atEnd() {
		c := p.input[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return "", fmt.Errorf("schema string: expected type name at position %d, got %q", p.pos, p.rest())
	}
	return p.input[start:p.pos], nil
}

func (p *schemaStringParser) parseIntLiteral() (int, error) {
	p.skipSpace()
	start := p.pos
	for !p.atEnd() && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("schema string: expected integer at position %d, got %q", p.pos, p.rest())
	}
	return strconv.Atoi(p.input[start:p.pos])
}

// ParseClickHouseType parses the ClickHouse-specific column-type grammar
// named in spec.md §6: "Array(T) | LowCardinality(T) | Nullable(T) |
// Ident[(int[,int])]". LowCardinality and Nullable are transparent wrappers
// at this layer — nullability is a runtime property of Value, not DataType
// (spec.md §3), so Nullable(T) simply parses to T.
func ParseClickHouseType(s string) (DataType, error) {
	p := &schemaStringParser{input: s}
	t, err := p.parseClickHouseType()
	if err != nil {
		return DataType{}, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return DataType{}, fmt.Errorf("clickhouse type: unexpected trailing input %q", p.rest())
	}
	return t, nil
}

func (p *schemaStringParser) parseClickHouseType() (DataType, error) {
	p.skipSpace()
	rest := p.rest()
	switch {
	case strings.HasPrefix(rest, "Array("):
		p.pos += len("Array(")
		elem, err := p.parseClickHouseType()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect(')'); err != nil {
			return DataType{}, err
		}
		return ArrayType(elem), nil
	case strings.HasPrefix(rest, "LowCardinality("):
		p.pos += len("LowCardinality(")
		inner, err := p.parseClickHouseType()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect(')'); err != nil {
			return DataType{}, err
		}
		return inner, nil
	case strings.HasPrefix(rest, "Nullable("):
		p.pos += len("Nullable(")
		inner, err := p.parseClickHouseType()
		if err != nil {
			return DataType{}, err
		}
		if err := p.expect(')'); err != nil {
			return DataType{}, err
		}
		return inner, nil
	}

	ident, err := p.parseTypeName()
	if err != nil {
		return DataType{}, err
	}
	var args []int
	p.skipSpace()
	if p.peekByte() == '(' {
		p.pos++
		for {
			n, err := p.parseIntLiteral()
			if err != nil {
				return DataType{}, err
			}
			args = append(args, n)
			p.skipSpace()
			if p.peekByte() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return DataType{}, err
		}
	}
	return clickHouseIdentType(ident, args)
}

func clickHouseIdentType(ident string, args []int) (DataType, error) {
	switch ident {
	case "UInt8", "UInt16", "UInt32", "Int8", "Int16", "Int32":
		return Int32Type(), nil
	case "UInt64", "Int64":
		return Int64Type(), nil
	case "Float32":
		return Float32Type(), nil
	case "Float64":
		return Float64Type(), nil
	case "String", "FixedString":
		return StringType(), nil
	case "Bool":
		return BooleanType(), nil
	case "DateTime", "DateTime64":
		return TimestampType(UnitSecond), nil
	case "Decimal":
		if len(args) == 2 {
			return DecimalType(args[0], args[1]), nil
		}
		return DecimalType(10, 0), nil
	default:
		return DataType{}, fmt.Errorf("clickhouse type: unknown identifier %q", ident)
	}
}
