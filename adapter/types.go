package adapter

import "fmt"

// LogicalType is a column kind as the ORM names it.
type LogicalType string

// Logical types with a Hive storage type.
const (
	PrimaryKey LogicalType = "primary_key"
	Integer    LogicalType = "integer"
	String     LogicalType = "string"
	Text       LogicalType = "text"
	Boolean    LogicalType = "boolean"
	Date       LogicalType = "date"
	Datetime   LogicalType = "datetime"
	Time       LogicalType = "time"
	Timestamp  LogicalType = "timestamp"
	Float      LogicalType = "float"
	Double     LogicalType = "double"
	Decimal    LogicalType = "decimal"
	Binary     LogicalType = "binary"
	Array      LogicalType = "array"
)

// Hive storage type names.
const (
	TypeTinyInt  = "TINYINT"
	TypeSmallInt = "SMALLINT"
	TypeInt      = "INT"
	TypeBigInt   = "BIGINT"
	TypeBoolean  = "BOOLEAN"
	TypeString   = "STRING"
	TypeTime     = "TIMESTAMP"
	TypeFloat    = "FLOAT"
	TypeDouble   = "DOUBLE"
	TypeDecimal  = "DECIMAL"
	TypeBinary   = "BINARY"
	TypeArray    = "ARRAY<STRING>"
)

// The ORM's "float" is double precision; its "double" is stored as FLOAT.
var nativeDatabaseTypes = map[LogicalType]string{
	PrimaryKey: TypeInt,
	Integer:    TypeInt,
	String:     TypeString,
	Text:       TypeString,
	Boolean:    TypeBoolean,
	Date:       TypeTime,
	Datetime:   TypeTime,
	Time:       TypeTime,
	Timestamp:  TypeTime,
	Double:     TypeFloat,
	Float:      TypeDouble,
	Decimal:    TypeDecimal,
	Binary:     TypeBinary,
	Array:      TypeArray,
}

// NativeDatabaseTypes returns a copy of the logical to storage type table.
func NativeDatabaseTypes() map[LogicalType]string {
	out := make(map[LogicalType]string, len(nativeDatabaseTypes))
	for k, v := range nativeDatabaseTypes {
		out[k] = v
	}
	return out
}

// PhysicalType maps a logical type to its Hive storage type. width is the
// integer byte size; 0 means unspecified.
func PhysicalType(logical LogicalType, width int) (string, error) {
	if logical == Integer {
		return integerType(width)
	}
	if t, ok := nativeDatabaseTypes[logical]; ok {
		return t, nil
	}
	return "", &UnsupportedTypeError{Type: logical}
}

func integerType(width int) (string, error) {
	switch width {
	case 1:
		return TypeTinyInt, nil
	case 2:
		return TypeSmallInt, nil
	case 0, 3, 4:
		return TypeInt, nil
	case 5, 6, 7, 8:
		return TypeBigInt, nil
	}
	return "", &UnsupportedTypeError{Type: Integer, Width: width}
}

// columnType is the storage type of a column definition, including decimal
// precision and scale.
func columnType(def ColumnDefinition) (string, error) {
	if def.Type == Decimal && def.Precision > 0 {
		return fmt.Sprintf("%s(%d,%d)", TypeDecimal, def.Precision, def.Scale), nil
	}
	return PhysicalType(def.Type, def.Limit)
}
