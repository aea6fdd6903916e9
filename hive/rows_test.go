package hive2

import (
	"testing"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColBasedSet(t *testing.T) {
	results := &cli_service.TRowSet{
		Columns: []*cli_service.TColumn{
			{StringVal: &cli_service.TStringColumn{
				Values: []string{"id", "name", "tags"},
				Nulls:  []byte{0},
			}},
			{I32Val: &cli_service.TI32Column{
				Values: []int32{1, 0, 3},
				Nulls:  []byte{0x02},
			}},
		},
	}
	set, err := newRowSet(cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V8, results)
	require.NoError(t, err)

	var got [][]interface{}
	for set.hasNext() {
		got = append(got, set.next())
	}
	assert.Equal(t, [][]interface{}{
		{"id", int32(1)},
		{"name", nil},
		{"tags", int32(3)},
	}, got)
}

func TestColBasedSetRejectsEmptyUnion(t *testing.T) {
	_, err := newRowSet(cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V8, &cli_service.TRowSet{
		Columns: []*cli_service.TColumn{{}},
	})
	assert.Error(t, err)
}

func TestRowBasedSet(t *testing.T) {
	name := "dual"
	results := &cli_service.TRowSet{
		Rows: []*cli_service.TRow{
			{ColVals: []*cli_service.TColumnValue{
				{StringVal: &cli_service.TStringValue{Value: &name}},
				{I64Val: &cli_service.TI64Value{}},
			}},
		},
	}
	set, err := newRowSet(cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V6, results)
	require.NoError(t, err)

	require.True(t, set.hasNext())
	assert.Equal(t, []interface{}{"dual", nil}, set.next())
	assert.False(t, set.hasNext())
}

func TestEmptyFetchHasNoRows(t *testing.T) {
	set, err := newRowSet(cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V8, nil)
	require.NoError(t, err)
	assert.False(t, set.hasNext())
}

func TestIsNull(t *testing.T) {
	nulls := []byte{0x81, 0x01}
	assert.True(t, isNull(nulls, 0))
	assert.False(t, isNull(nulls, 1))
	assert.True(t, isNull(nulls, 7))
	assert.True(t, isNull(nulls, 8))
	assert.False(t, isNull(nulls, 9))
	assert.False(t, isNull(nulls, 64))
}

func TestDriverValue(t *testing.T) {
	assert.Equal(t, int64(1), driverValue(int8(1)))
	assert.Equal(t, int64(2), driverValue(int16(2)))
	assert.Equal(t, int64(3), driverValue(int32(3)))
	assert.Equal(t, int64(4), driverValue(int64(4)))
	assert.Equal(t, "s", driverValue("s"))
	assert.Nil(t, driverValue(nil))
}
