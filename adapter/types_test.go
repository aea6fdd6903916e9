package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerWidths(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{0, "INT"},
		{1, "TINYINT"},
		{2, "SMALLINT"},
		{3, "INT"},
		{4, "INT"},
		{5, "BIGINT"},
		{6, "BIGINT"},
		{7, "BIGINT"},
		{8, "BIGINT"},
	}
	for _, tt := range tests {
		got, err := PhysicalType(Integer, tt.width)
		require.NoError(t, err, "width %d", tt.width)
		assert.Equal(t, tt.want, got, "width %d", tt.width)
	}
}

func TestIntegerWidthOutOfRange(t *testing.T) {
	for _, width := range []int{9, 16, -1} {
		_, err := PhysicalType(Integer, width)
		require.Error(t, err)
		typeErr, ok := err.(*UnsupportedTypeError)
		require.True(t, ok, "width %d: %T", width, err)
		assert.Equal(t, width, typeErr.Width)
		assert.Contains(t, err.Error(), "byte size")
	}
}

func TestFixedTypes(t *testing.T) {
	tests := map[LogicalType]string{
		Boolean:    "BOOLEAN",
		Text:       "STRING",
		String:     "STRING",
		Date:       "TIMESTAMP",
		Datetime:   "TIMESTAMP",
		Time:       "TIMESTAMP",
		Timestamp:  "TIMESTAMP",
		Double:     "FLOAT",
		Float:      "DOUBLE",
		Array:      "ARRAY<STRING>",
		Binary:     "BINARY",
		PrimaryKey: "INT",
	}
	for logical, want := range tests {
		got, err := PhysicalType(logical, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(logical))
	}
}

func TestUnknownLogicalType(t *testing.T) {
	_, err := PhysicalType("uuid", 0)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedTypeError{}, err)
	assert.Contains(t, err.Error(), "uuid")
}

func TestNativeDatabaseTypesIsACopy(t *testing.T) {
	types := NativeDatabaseTypes()
	types[Boolean] = "TINYINT"

	got, err := PhysicalType(Boolean, 0)
	require.NoError(t, err)
	assert.Equal(t, "BOOLEAN", got)
}

func TestDecimalColumnType(t *testing.T) {
	got, err := columnType(ColumnDefinition{Type: Decimal, Precision: 10, Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL(10,2)", got)

	got, err = columnType(ColumnDefinition{Type: Decimal})
	require.NoError(t, err)
	assert.Equal(t, "DECIMAL", got)
}
