package adapter

// SQLLiteral is an expression that is already SQL and is emitted verbatim.
type SQLLiteral string

// ColumnDefinition describes a column to create. Limit is the integer byte
// width or string length; Precision and Scale apply to decimals.
type ColumnDefinition struct {
	Name      string
	Type      LogicalType
	Limit     int
	Precision int
	Scale     int

	Default   *string
	Null      *bool
	Partition bool
}

// ValuePair is one expression of a VALUES list with the column it is
// written to. Column may be nil, in which case the value is quoted by its Go
// type alone.
type ValuePair struct {
	Value  interface{}
	Column *Column
}

// Values is an ordered VALUES list.
type Values []ValuePair

// InsertStatement inserts Values into Relation. Hive has no literal
// INSERT ... VALUES before 0.14, so the values are selected from dual.
type InsertStatement struct {
	Relation string
	Values   Values
}

// TableDefinition describes a CREATE TABLE. Columns flagged Partition go
// into the PARTITIONED BY clause.
type TableDefinition struct {
	Name           string
	Columns        []ColumnDefinition
	IfNotExists    bool
	Comment        string
	FieldDelimiter string
	StoredAs       string
}

// IndexDefinition describes a CREATE INDEX. Algorithm is the index handler,
// defaulting to the compact index handler; Using and Options are passed
// through untouched.
type IndexDefinition struct {
	Name      string
	Table     string
	Columns   []string
	Using     string
	Options   string
	Algorithm string
}

// Index is an index of a table. Hive does not expose its indexes through
// this adapter, so none are ever listed.
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// UpdateStatement and DeleteStatement exist so callers get an explicit
// error instead of silently rewriting a table.
type UpdateStatement struct {
	Relation string
}

type DeleteStatement struct {
	Relation string
}
