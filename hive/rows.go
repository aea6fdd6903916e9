package hive2

import (
	"bytes"
	"context"
	"database/sql/driver"
	"io"

	"github.com/abdelaziz-ouhammou/go-impala/v3/services/cli_service"
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"
)

// rowSet iterates one fetched batch.
type rowSet interface {
	hasNext() bool
	next() []interface{}
}

// rowBasedSet decodes TRowSet.Rows, used by servers speaking protocol V6 or
// older.
type rowBasedSet struct {
	tRowSet *cli_service.TRowSet
	offset  int
}

func (rs *rowBasedSet) hasNext() bool {
	return rs.offset < len(rs.tRowSet.GetRows())
}

func (rs *rowBasedSet) next() []interface{} {
	vals := rs.tRowSet.Rows[rs.offset].GetColVals()
	result := make([]interface{}, len(vals))
	for i, v := range vals {
		result[i] = columnValue(v)
	}
	rs.offset++
	return result
}

func columnValue(col *cli_service.TColumnValue) interface{} {
	switch {
	case col.IsSetBoolVal():
		if v := col.GetBoolVal().Value; v != nil {
			return *v
		}
	case col.IsSetByteVal():
		if v := col.GetByteVal().Value; v != nil {
			return *v
		}
	case col.IsSetI16Val():
		if v := col.GetI16Val().Value; v != nil {
			return *v
		}
	case col.IsSetI32Val():
		if v := col.GetI32Val().Value; v != nil {
			return *v
		}
	case col.IsSetI64Val():
		if v := col.GetI64Val().Value; v != nil {
			return *v
		}
	case col.IsSetDoubleVal():
		if v := col.GetDoubleVal().Value; v != nil {
			return *v
		}
	case col.IsSetStringVal():
		if v := col.GetStringVal().Value; v != nil {
			return *v
		}
	}
	return nil
}

// colBasedSet decodes TRowSet.Columns (or the compact-encoded
// BinaryColumns), used by protocol V7 and newer.
type colBasedSet struct {
	tRowSet  *cli_service.TRowSet
	rowCount int
	offset   int
}

func (rs *colBasedSet) init() error {
	if rs.tRowSet.IsSetBinaryColumns() {
		columnCount := int(rs.tRowSet.GetColumnCount())
		protocol := thrift.NewTCompactProtocolConf(
			thrift.NewStreamTransportR(bytes.NewBuffer(rs.tRowSet.GetBinaryColumns())),
			&thrift.TConfiguration{})
		rs.tRowSet.Columns = make([]*cli_service.TColumn, columnCount)
		for i := 0; i < columnCount; i++ {
			column := &cli_service.TColumn{}
			if err := column.Read(context.Background(), protocol); err != nil {
				return errors.Wrapf(err, "decode binary column %d", i)
			}
			rs.tRowSet.Columns[i] = column
		}
	}
	for i, col := range rs.tRowSet.GetColumns() {
		values, _, ok := columnData(col)
		if !ok {
			return errors.Errorf("column %d: invalid union object", i)
		}
		rs.rowCount = values
	}
	return nil
}

// columnData reports the number of values and the null bitmap of a column.
func columnData(col *cli_service.TColumn) (int, []byte, bool) {
	switch {
	case col.IsSetBoolVal():
		return len(col.GetBoolVal().GetValues()), col.GetBoolVal().GetNulls(), true
	case col.IsSetByteVal():
		return len(col.GetByteVal().GetValues()), col.GetByteVal().GetNulls(), true
	case col.IsSetI16Val():
		return len(col.GetI16Val().GetValues()), col.GetI16Val().GetNulls(), true
	case col.IsSetI32Val():
		return len(col.GetI32Val().GetValues()), col.GetI32Val().GetNulls(), true
	case col.IsSetI64Val():
		return len(col.GetI64Val().GetValues()), col.GetI64Val().GetNulls(), true
	case col.IsSetDoubleVal():
		return len(col.GetDoubleVal().GetValues()), col.GetDoubleVal().GetNulls(), true
	case col.IsSetBinaryVal():
		return len(col.GetBinaryVal().GetValues()), col.GetBinaryVal().GetNulls(), true
	case col.IsSetStringVal():
		return len(col.GetStringVal().GetValues()), col.GetStringVal().GetNulls(), true
	}
	return 0, nil, false
}

func (rs *colBasedSet) valueAt(col *cli_service.TColumn, index int) interface{} {
	_, nulls, ok := columnData(col)
	if !ok || isNull(nulls, index) {
		return nil
	}
	switch {
	case col.IsSetBoolVal():
		return col.GetBoolVal().GetValues()[index]
	case col.IsSetByteVal():
		return col.GetByteVal().GetValues()[index]
	case col.IsSetI16Val():
		return col.GetI16Val().GetValues()[index]
	case col.IsSetI32Val():
		return col.GetI32Val().GetValues()[index]
	case col.IsSetI64Val():
		return col.GetI64Val().GetValues()[index]
	case col.IsSetDoubleVal():
		return col.GetDoubleVal().GetValues()[index]
	case col.IsSetBinaryVal():
		return col.GetBinaryVal().GetValues()[index]
	case col.IsSetStringVal():
		return col.GetStringVal().GetValues()[index]
	}
	return nil
}

func isNull(nulls []byte, index int) bool {
	if index/8 >= len(nulls) {
		return false
	}
	return nulls[index/8]&(1<<uint(index%8)) != 0
}

func (rs *colBasedSet) hasNext() bool {
	return rs.offset < rs.rowCount
}

func (rs *colBasedSet) next() []interface{} {
	columns := rs.tRowSet.GetColumns()
	result := make([]interface{}, len(columns))
	for i, column := range columns {
		result[i] = rs.valueAt(column, rs.offset)
	}
	rs.offset++
	return result
}

type hiveRows struct {
	hiveStmt    *hiveStmt
	ctx         context.Context
	columns     []*cli_service.TColumnDesc
	columnNames []string
	fetchedRows rowSet
	exhausted   bool
}

func (rows *hiveRows) retrieveSchema() error {
	metadataReq := cli_service.NewTGetResultSetMetadataReq()
	metadataReq.OperationHandle = rows.hiveStmt.stmtHandle
	metadataResp, err := rows.hiveStmt.hc.client.GetResultSetMetadata(rows.ctx, metadataReq)
	if err != nil {
		return errors.Wrap(err, "get result set metadata")
	}
	if err := checkStatus(metadataResp.GetStatus()); err != nil {
		return err
	}
	schema := metadataResp.GetSchema()
	if schema == nil {
		return nil
	}
	rows.columns = schema.GetColumns()
	for _, column := range rows.columns {
		rows.columnNames = append(rows.columnNames, column.ColumnName)
	}
	return nil
}

func (rows *hiveRows) Columns() []string {
	return rows.columnNames
}

func (rows *hiveRows) Close() error {
	return rows.hiveStmt.closeClientOperation()
}

func (rows *hiveRows) fetch() error {
	fetchReq := cli_service.NewTFetchResultsReq()
	fetchReq.OperationHandle = rows.hiveStmt.stmtHandle
	fetchReq.Orientation = cli_service.TFetchOrientation_FETCH_NEXT
	fetchReq.MaxRows = rows.hiveStmt.hc.fetchSize
	fetchResp, err := rows.hiveStmt.hc.client.FetchResults(rows.ctx, fetchReq)
	if err != nil {
		return errors.Wrap(err, "fetch results")
	}
	if err := checkStatus(fetchResp.GetStatus()); err != nil {
		return err
	}
	set, err := newRowSet(rows.hiveStmt.hc.protocol, fetchResp.GetResults())
	if err != nil {
		return err
	}
	rows.fetchedRows = set
	return nil
}

func newRowSet(protocol cli_service.TProtocolVersion, results *cli_service.TRowSet) (rowSet, error) {
	if results == nil {
		results = cli_service.NewTRowSet()
	}
	if protocol > cli_service.TProtocolVersion_HIVE_CLI_SERVICE_PROTOCOL_V6 {
		set := &colBasedSet{tRowSet: results}
		if err := set.init(); err != nil {
			return nil, err
		}
		return set, nil
	}
	return &rowBasedSet{tRowSet: results}, nil
}

func (rows *hiveRows) Next(dest []driver.Value) error {
	if rows.exhausted || len(rows.columns) == 0 {
		return io.EOF
	}
	if rows.fetchedRows == nil || !rows.fetchedRows.hasNext() {
		if err := rows.fetch(); err != nil {
			return err
		}
		if !rows.fetchedRows.hasNext() {
			rows.exhausted = true
			return io.EOF
		}
	}
	row := rows.fetchedRows.next()
	for i := 0; i < len(dest) && i < len(row); i++ {
		dest[i] = driverValue(row[i])
	}
	return nil
}

// driverValue widens Thrift integer widths to the int64 database/sql expects.
func driverValue(v interface{}) driver.Value {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	}
	return v
}

func (rows *hiveRows) primitive(index int) *cli_service.TPrimitiveTypeEntry {
	desc := rows.columns[index].GetTypeDesc()
	if desc == nil || len(desc.GetTypes()) == 0 {
		return nil
	}
	return desc.GetTypes()[0].GetPrimitiveEntry()
}

func (rows *hiveRows) ColumnTypeDatabaseTypeName(index int) string {
	entry := rows.primitive(index)
	if entry == nil {
		return ""
	}
	return cli_service.TYPE_NAMES[entry.Type]
}

func (rows *hiveRows) ColumnTypeLength(index int) (length int64, ok bool) {
	entry := rows.primitive(index)
	if entry == nil || !entry.IsSetTypeQualifiers() {
		return 0, false
	}
	switch entry.Type {
	case cli_service.TTypeId_CHAR_TYPE, cli_service.TTypeId_VARCHAR_TYPE:
		if v, ok := entry.GetTypeQualifiers().Qualifiers[cli_service.CHARACTER_MAXIMUM_LENGTH]; ok {
			return int64(v.GetI32Value()), true
		}
	}
	return 0, false
}

func (rows *hiveRows) ColumnTypePrecisionScale(index int) (precision, scale int64, ok bool) {
	entry := rows.primitive(index)
	if entry == nil || !entry.IsSetTypeQualifiers() || entry.Type != cli_service.TTypeId_DECIMAL_TYPE {
		return 0, 0, false
	}
	tq := entry.GetTypeQualifiers()
	precision = 10
	if p := tq.Qualifiers[cli_service.PRECISION]; p != nil {
		precision = int64(p.GetI32Value())
	}
	if s := tq.Qualifiers[cli_service.SCALE]; s != nil {
		scale = int64(s.GetI32Value())
	}
	return precision, scale, true
}

var (
	_ driver.RowsColumnTypeDatabaseTypeName = (*hiveRows)(nil)
	_ driver.RowsColumnTypeLength           = (*hiveRows)(nil)
	_ driver.RowsColumnTypePrecisionScale   = (*hiveRows)(nil)
)
