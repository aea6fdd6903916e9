package adapter

import (
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertWithoutValues(t *testing.T) {
	tr := NewTranslator()
	sql, err := tr.Insert(InsertStatement{Relation: "events"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO TABLE events", sql)
}

func TestInsertSelectsFromDual(t *testing.T) {
	tr := NewTranslator()
	stmt := InsertStatement{
		Relation: "events",
		Values: Values{
			{Value: 1, Column: &Column{Name: "id", SQLType: "INT"}},
			{Value: "login", Column: &Column{Name: "kind", SQLType: "STRING"}},
			{Value: SQLLiteral("unix_timestamp()"), Column: &Column{Name: "at", SQLType: "BIGINT"}},
		},
	}
	sql, err := tr.Insert(stmt)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO TABLE events SELECT (1, 'login', unix_timestamp()) FROM dual", sql)
}

func TestInsertUnrenderableValue(t *testing.T) {
	tr := NewTranslator()
	_, err := tr.Insert(InsertStatement{
		Relation: "events",
		Values: Values{
			{Value: 1, Column: &Column{Name: "id", SQLType: "INT"}},
			{Value: map[string]int{"a": 1}, Column: &Column{Name: "attrs", SQLType: "STRING"}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert into events: value 1")
}

func TestValues(t *testing.T) {
	tr := NewTranslator()
	got, err := tr.Values(Values{{Value: nil}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT (NULL) FROM dual", got)

	got, err = tr.Values(Values{
		{Value: sql.NullString{}, Column: &Column{SQLType: "STRING"}},
		{Value: sql.NullInt64{Int64: 3, Valid: true}, Column: &Column{SQLType: "BIGINT"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT (NULL, 3) FROM dual", got)
}

func TestUpdateAndDeleteRejected(t *testing.T) {
	tr := NewTranslator()

	_, err := tr.Update(UpdateStatement{Relation: "events"})
	require.Error(t, err)
	assert.Equal(t, ErrUnsupportedStatement, errors.Cause(err))

	_, err = tr.Delete(DeleteStatement{Relation: "events"})
	require.Error(t, err)
	assert.Equal(t, ErrUnsupportedStatement, errors.Cause(err))
}

func TestCreateIndex(t *testing.T) {
	tr := NewTranslator()
	assert.Equal(t,
		"CREATE INDEX idx_user ON TABLE events (user_id, kind) AS "+
			"'org.apache.hadoop.hive.ql.index.compact.CompactIndexHandler' WITH DEFERRED REBUILD",
		tr.CreateIndex(IndexDefinition{Name: "idx_user", Table: "events", Columns: []string{"user_id", "kind"}}))

	assert.Equal(t,
		"CREATE INDEX idx_kind ON TABLE events (kind) IN TABLE events_idx AS 'BITMAP' WITH DEFERRED REBUILD",
		tr.CreateIndex(IndexDefinition{
			Name:      "idx_kind",
			Table:     "events",
			Columns:   []string{"kind"},
			Options:   "IN TABLE events_idx",
			Algorithm: "'BITMAP'",
		}))
}

func TestDropIndex(t *testing.T) {
	assert.Equal(t, "DROP INDEX IF EXISTS idx ON events", NewTranslator().DropIndex("idx", "events"))
}

func TestColumnSQL(t *testing.T) {
	sql, err := NewTranslator().ColumnSQL(ColumnDefinition{
		Name:    "name",
		Type:    String,
		Default: strPtr("x"),
		Null:    boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, `name STRING COMMENT '{"v":1,"default":"x","null":true,"requested_type":"string"}'`, sql)
}

func TestColumnSQLEscapesDefault(t *testing.T) {
	sql, err := NewTranslator().ColumnSQL(ColumnDefinition{Name: "note", Type: Text, Default: strPtr("it's")})
	require.NoError(t, err)
	assert.Equal(t, `note STRING COMMENT '{"v":1,"default":"it\'s","requested_type":"text"}'`, sql)
}

func TestColumnSQLBadWidth(t *testing.T) {
	_, err := NewTranslator().ColumnSQL(ColumnDefinition{Name: "n", Type: Integer, Limit: 9})
	require.Error(t, err)
	_, ok := errors.Cause(err).(*UnsupportedTypeError)
	assert.True(t, ok)
}

func TestCreateTable(t *testing.T) {
	sql, err := NewTranslator().CreateTable(TableDefinition{
		Name: "logs",
		Columns: []ColumnDefinition{
			{Name: "msg", Type: Text},
			{Name: "dt", Type: String, Partition: true},
		},
		IfNotExists:    true,
		FieldDelimiter: "\t",
		StoredAs:       "TEXTFILE",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS logs (msg STRING COMMENT '{"v":1,"requested_type":"text"}') `+
			`PARTITIONED BY (dt STRING COMMENT '{"v":1,"requested_type":"string","partition":true}') `+
			"ROW FORMAT DELIMITED FIELDS TERMINATED BY '\t' STORED AS TEXTFILE",
		sql)
}

func TestCreateTableErrors(t *testing.T) {
	tr := NewTranslator()

	_, err := tr.CreateTable(TableDefinition{Columns: []ColumnDefinition{{Name: "a", Type: String}}})
	assert.Error(t, err)

	_, err = tr.CreateTable(TableDefinition{Name: "p", Columns: []ColumnDefinition{{Name: "dt", Type: String, Partition: true}}})
	assert.Error(t, err)
}

func TestAlterStatements(t *testing.T) {
	tr := NewTranslator()

	sql, err := tr.AddColumn("events", ColumnDefinition{Name: "n", Type: Integer, Limit: 8})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE events ADD COLUMNS (n BIGINT COMMENT '{"v":1,"requested_type":"integer"}')`, sql)

	sql, err = tr.ChangeColumn("events", "n", ColumnDefinition{Name: "total", Type: Double})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE events CHANGE n total FLOAT COMMENT '{"v":1,"requested_type":"double"}'`, sql)

	assert.Equal(t, "ALTER TABLE a RENAME TO b", tr.RenameTable("a", "b"))
	assert.Equal(t, "DROP TABLE IF EXISTS a", tr.DropTable("a", true))
	assert.Equal(t, "DROP TABLE a", tr.DropTable("a", false))
	assert.Equal(t, "TRUNCATE TABLE a", tr.TruncateTable("a"))
}

func TestAlterRejectsPartitionColumns(t *testing.T) {
	tr := NewTranslator()
	dt := ColumnDefinition{Name: "dt", Type: String, Partition: true}

	_, err := tr.AddColumn("events", dt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add column dt")

	_, err = tr.ChangeColumn("events", "day", dt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "change column day")
}

func TestIntrospectionStatements(t *testing.T) {
	tr := NewTranslator()
	assert.Equal(t, "SHOW TABLES", tr.ShowTables(""))
	assert.Equal(t, "SHOW TABLES 'dual'", tr.ShowTables("dual"))
	assert.Equal(t, "DESCRIBE events", tr.Describe("events"))
	assert.Equal(t, "USE warehouse", tr.Use("warehouse"))
}

func TestDualBootstrap(t *testing.T) {
	tr := NewTranslator()
	assert.Equal(t, []string{
		"CREATE TABLE dual (dummy STRING)",
		"INSERT OVERWRITE TABLE dual SELECT 'X'",
	}, tr.dualBootstrap(""))

	assert.Equal(t, []string{
		"CREATE TABLE dual (dummy STRING)",
		"LOAD DATA LOCAL INPATH '/tmp/dual.txt' OVERWRITE INTO TABLE dual",
		"INSERT OVERWRITE TABLE dual SELECT 'X' FROM dual LIMIT 1",
	}, tr.dualBootstrap("/tmp/dual.txt"))

	assert.Equal(t, "SELECT * FROM dual LIMIT 1", tr.dualCheck())
	assert.Equal(t, "INSERT OVERWRITE TABLE dual SELECT 'X'", tr.dualFill())
}
