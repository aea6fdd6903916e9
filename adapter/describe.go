package adapter

import (
	"fmt"
	"strings"
)

// ParseDescribe reads the rows of DESCRIBE <table>. Each row is
// (col_name, data_type[, comment]). Column rows end at the first blank or
// "#" row, after which Hive lists partition and detailed table
// information; partition columns already appear in the column rows.
// Declaration order is preserved.
func ParseDescribe(rows [][]interface{}) ([]Column, error) {
	var cols []Column
	for i, row := range rows {
		if len(row) < 2 {
			return nil, &ParseError{Statement: "DESCRIBE", Row: i, Reason: fmt.Sprintf("want at least 2 fields, got %d", len(row))}
		}
		name, ok := field(row[0])
		if !ok {
			return nil, &ParseError{Statement: "DESCRIBE", Row: i, Reason: fmt.Sprintf("col_name has type %T", row[0])}
		}
		if name == "" || strings.HasPrefix(name, "#") {
			break
		}
		typ, ok := field(row[1])
		if !ok || typ == "" {
			return nil, &ParseError{Statement: "DESCRIBE", Row: i, Reason: "missing data_type for " + name}
		}
		var comment string
		if len(row) > 2 {
			comment, _ = field(row[2])
		}
		cols = append(cols, newColumn(name, typ, comment))
	}
	return cols, nil
}

// newColumn builds a Column, recovering packed metadata from comment. A
// column without readable metadata is NOT NULL with no default.
func newColumn(name, typ, comment string) Column {
	col := Column{Name: name, SQLType: typ}
	meta, ok := UnpackMetadata(comment)
	if !ok {
		col.Comment = comment
		return col
	}
	col.Default = meta.Default
	if meta.Null != nil {
		col.Null = *meta.Null
	}
	col.RequestedType = LogicalType(meta.RequestedType)
	col.Partition = meta.Partition
	return col
}

// ParseShowTables reads the rows of SHOW TABLES: the first field of each
// row is a table name.
func ParseShowTables(rows [][]interface{}) ([]string, error) {
	names := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, &ParseError{Statement: "SHOW TABLES", Row: i, Reason: "empty row"}
		}
		name, ok := field(row[0])
		if !ok || name == "" {
			return nil, &ParseError{Statement: "SHOW TABLES", Row: i, Reason: fmt.Sprintf("bad table name %v", row[0])}
		}
		names = append(names, name)
	}
	return names, nil
}

// field returns a trimmed text field. nil is an empty field.
func field(v interface{}) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(s), true
	case []byte:
		return strings.TrimSpace(string(s)), true
	}
	return "", false
}
