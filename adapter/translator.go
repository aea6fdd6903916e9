package adapter

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// DualTable is the one-row table INSERT ... SELECT reads from.
	DualTable = "dual"

	// CompactIndexHandler is the index handler used when none is given.
	CompactIndexHandler = "'org.apache.hadoop.hive.ql.index.compact.CompactIndexHandler'"
)

// Translator renders ORM statements as HiveQL. It holds no state and is
// safe for concurrent use.
type Translator struct{}

// NewTranslator returns a Translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Insert renders INSERT INTO TABLE <relation> followed by the values
// clause, if any.
func (t *Translator) Insert(stmt InsertStatement) (string, error) {
	sql := "INSERT INTO TABLE " + stmt.Relation
	if len(stmt.Values) == 0 {
		return sql, nil
	}
	values, err := t.Values(stmt.Values)
	if err != nil {
		return "", errors.Wrapf(err, "insert into %s", stmt.Relation)
	}
	return sql + " " + values, nil
}

// Values renders SELECT (<expr>, ...) FROM dual.
func (t *Translator) Values(values Values) (string, error) {
	exprs := make([]string, len(values))
	for i, v := range values {
		expr, err := Quote(v.Value, v.Column)
		if err != nil {
			return "", errors.Wrapf(err, "value %d", i)
		}
		exprs[i] = expr
	}
	return "SELECT (" + strings.Join(exprs, ", ") + ") FROM " + DualTable, nil
}

// Update always fails: Hive tables are rewritten, never updated in place.
func (t *Translator) Update(stmt UpdateStatement) (string, error) {
	return "", errors.Wrapf(ErrUnsupportedStatement, "UPDATE %s", stmt.Relation)
}

// Delete always fails for the same reason as Update.
func (t *Translator) Delete(stmt DeleteStatement) (string, error) {
	return "", errors.Wrapf(ErrUnsupportedStatement, "DELETE FROM %s", stmt.Relation)
}

// CreateIndex renders a deferred rebuild index. Options are not checked
// here; Hive rejects bad ones at execution.
func (t *Translator) CreateIndex(def IndexDefinition) string {
	algorithm := def.Algorithm
	if algorithm == "" {
		algorithm = CompactIndexHandler
	}
	parts := []string{"CREATE INDEX", def.Name}
	if def.Using != "" {
		parts = append(parts, def.Using)
	}
	parts = append(parts, "ON TABLE", def.Table, "("+strings.Join(def.Columns, ", ")+")")
	if def.Options != "" {
		parts = append(parts, def.Options)
	}
	parts = append(parts, "AS", algorithm, "WITH DEFERRED REBUILD")
	return strings.Join(parts, " ")
}

// DropIndex renders DROP INDEX IF EXISTS <name> ON <table>.
func (t *Translator) DropIndex(name, table string) string {
	return "DROP INDEX IF EXISTS " + name + " ON " + table
}

// ColumnSQL renders "<name> <type> COMMENT '<metadata>'".
func (t *Translator) ColumnSQL(def ColumnDefinition) (string, error) {
	typ, err := columnType(def)
	if err != nil {
		return "", errors.Wrapf(err, "column %s", def.Name)
	}
	comment, err := metadataFor(def).Pack()
	if err != nil {
		return "", err
	}
	return def.Name + " " + typ + " COMMENT " + QuoteString(comment), nil
}

// CreateTable renders CREATE TABLE with partition columns moved to
// PARTITIONED BY.
func (t *Translator) CreateTable(def TableDefinition) (string, error) {
	if def.Name == "" {
		return "", errors.New("create table: no table name")
	}
	var cols, partitions []string
	for _, c := range def.Columns {
		sql, err := t.ColumnSQL(c)
		if err != nil {
			return "", err
		}
		if c.Partition {
			partitions = append(partitions, sql)
		} else {
			cols = append(cols, sql)
		}
	}
	if len(cols) == 0 {
		return "", errors.Errorf("create table %s: no non-partition columns", def.Name)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if def.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(def.Name + " (" + strings.Join(cols, ", ") + ")")
	if def.Comment != "" {
		b.WriteString(" COMMENT " + QuoteString(def.Comment))
	}
	if len(partitions) > 0 {
		b.WriteString(" PARTITIONED BY (" + strings.Join(partitions, ", ") + ")")
	}
	if def.FieldDelimiter != "" {
		b.WriteString(" ROW FORMAT DELIMITED FIELDS TERMINATED BY " + QuoteString(def.FieldDelimiter))
	}
	if def.StoredAs != "" {
		b.WriteString(" STORED AS " + def.StoredAs)
	}
	return b.String(), nil
}

// AddColumn renders ALTER TABLE <table> ADD COLUMNS (<def>).
func (t *Translator) AddColumn(table string, def ColumnDefinition) (string, error) {
	if def.Partition {
		return "", errors.Errorf("add column %s: partition columns can only be declared by CREATE TABLE", def.Name)
	}
	sql, err := t.ColumnSQL(def)
	if err != nil {
		return "", err
	}
	return "ALTER TABLE " + table + " ADD COLUMNS (" + sql + ")", nil
}

// ChangeColumn renders ALTER TABLE <table> CHANGE <old> <def>, which
// renames and retypes a column and replaces its packed metadata.
func (t *Translator) ChangeColumn(table, oldName string, def ColumnDefinition) (string, error) {
	if def.Partition {
		return "", errors.Errorf("change column %s: partition columns can only be declared by CREATE TABLE", oldName)
	}
	sql, err := t.ColumnSQL(def)
	if err != nil {
		return "", err
	}
	return "ALTER TABLE " + table + " CHANGE " + oldName + " " + sql, nil
}

// RenameTable renders ALTER TABLE <from> RENAME TO <to>.
func (t *Translator) RenameTable(from, to string) string {
	return "ALTER TABLE " + from + " RENAME TO " + to
}

// DropTable renders DROP TABLE, optionally guarded by IF EXISTS.
func (t *Translator) DropTable(name string, ifExists bool) string {
	if ifExists {
		return "DROP TABLE IF EXISTS " + name
	}
	return "DROP TABLE " + name
}

// TruncateTable renders TRUNCATE TABLE <name>, the only way to remove rows.
func (t *Translator) TruncateTable(name string) string {
	return "TRUNCATE TABLE " + name
}

// ShowTables renders SHOW TABLES, filtered by pattern when it is not
// empty. Hive treats the pattern as a wildcard expression.
func (t *Translator) ShowTables(pattern string) string {
	if pattern == "" {
		return "SHOW TABLES"
	}
	return "SHOW TABLES " + QuoteString(pattern)
}

// Describe renders DESCRIBE <table>.
func (t *Translator) Describe(table string) string {
	return "DESCRIBE " + table
}

// Use renders USE <database>.
func (t *Translator) Use(database string) string {
	return "USE " + database
}

// dualBootstrap returns the statements that create and fill dual. With a
// seed path the table is first loaded from that file on the server and
// trimmed to one row; dualCheck then tells whether the file had any.
func (t *Translator) dualBootstrap(seedPath string) []string {
	stmts := []string{"CREATE TABLE " + DualTable + " (dummy STRING)"}
	if seedPath == "" {
		return append(stmts, t.dualFill())
	}
	return append(stmts,
		"LOAD DATA LOCAL INPATH "+QuoteString(seedPath)+" OVERWRITE INTO TABLE "+DualTable,
		"INSERT OVERWRITE TABLE "+DualTable+" SELECT 'X' FROM "+DualTable+" LIMIT 1",
	)
}

// dualFill writes the single row of dual from a FROM-less SELECT, which
// needs Hive 0.13 or later.
func (t *Translator) dualFill() string {
	return "INSERT OVERWRITE TABLE " + DualTable + " SELECT 'X'"
}

// dualCheck selects at most one row of dual.
func (t *Translator) dualCheck() string {
	return "SELECT * FROM " + DualTable + " LIMIT 1"
}
