package adapter

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"github.com/pkg/errors"
)

// ToArrow copies the result into an Arrow record. Each column takes the
// type of its first non-nil value; all-nil columns are strings. The caller
// releases the record.
func (r *Result) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	fields := make([]arrow.Field, len(r.Columns))
	for i, name := range r.Columns {
		fields[i] = arrow.Field{Name: name, Type: r.arrowType(i), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for rowIdx, row := range r.Rows {
		if len(row) != len(fields) {
			return nil, errors.Errorf("row %d has %d values, want %d", rowIdx, len(row), len(fields))
		}
		for i, v := range row {
			if err := appendValue(builder.Field(i), v); err != nil {
				return nil, errors.Wrapf(err, "row %d column %s", rowIdx, fields[i].Name)
			}
		}
	}
	return builder.NewRecord(), nil
}

func (r *Result) arrowType(col int) arrow.DataType {
	for _, row := range r.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case int64, int32, int16, int8, int:
			return arrow.PrimitiveTypes.Int64
		case float64, float32:
			return arrow.PrimitiveTypes.Float64
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case []byte:
			return arrow.BinaryTypes.Binary
		case time.Time:
			return arrow.FixedWidthTypes.Timestamp_us
		}
		return arrow.BinaryTypes.String
	}
	return arrow.BinaryTypes.String
}

func appendValue(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			b.Append(n)
		case int32:
			b.Append(int64(n))
		case int16:
			b.Append(int64(n))
		case int8:
			b.Append(int64(n))
		case int:
			b.Append(int64(n))
		default:
			return errors.Errorf("want integer, got %T", v)
		}
	case *array.Float64Builder:
		switch f := v.(type) {
		case float64:
			b.Append(f)
		case float32:
			b.Append(float64(f))
		default:
			return errors.Errorf("want float, got %T", v)
		}
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return errors.Errorf("want bool, got %T", v)
		}
		b.Append(x)
	case *array.BinaryBuilder:
		x, ok := v.([]byte)
		if !ok {
			return errors.Errorf("want []byte, got %T", v)
		}
		b.Append(x)
	case *array.TimestampBuilder:
		x, ok := v.(time.Time)
		if !ok {
			return errors.Errorf("want time.Time, got %T", v)
		}
		b.Append(arrow.Timestamp(x.UnixMicro()))
	case *array.StringBuilder:
		if s, ok := v.(string); ok {
			b.Append(s)
		} else {
			b.Append(fmt.Sprint(v))
		}
	default:
		return errors.Errorf("unexpected builder %T", b)
	}
	return nil
}
