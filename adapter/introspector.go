package adapter

import (
	"context"
)

// Querier runs a statement and returns its rows.
type Querier interface {
	Query(ctx context.Context, query string) (*Result, error)
}

// Introspector reads schema information with SHOW TABLES and DESCRIBE.
// Nothing is cached: every call is a round trip.
type Introspector struct {
	q          Querier
	translator *Translator
}

// NewIntrospector returns an Introspector issuing statements through q.
func NewIntrospector(q Querier) *Introspector {
	return &Introspector{q: q, translator: NewTranslator()}
}

// ListTables returns every table of the current database.
func (i *Introspector) ListTables(ctx context.Context) ([]string, error) {
	res, err := i.q.Query(ctx, i.translator.ShowTables(""))
	if err != nil {
		return nil, err
	}
	return ParseShowTables(res.Rows)
}

// TableExists reports whether SHOW TABLES '<name>' returns a row. Hive
// reads name as a pattern, so '*' or '|' in it can match other tables.
func (i *Introspector) TableExists(ctx context.Context, name string) (bool, error) {
	res, err := i.q.Query(ctx, i.translator.ShowTables(name))
	if err != nil {
		return false, err
	}
	return len(res.Rows) > 0, nil
}

// DescribeColumns returns the columns of table in declaration order. A
// table that does not exist has no columns.
func (i *Introspector) DescribeColumns(ctx context.Context, table string) ([]Column, error) {
	exists, err := i.TableExists(ctx, table)
	if err != nil || !exists {
		return nil, err
	}
	res, err := i.q.Query(ctx, i.translator.Describe(table))
	if err != nil {
		return nil, err
	}
	return ParseDescribe(res.Rows)
}

// PrimaryKey returns the first declared column of table. Hive enforces no
// keys; ok is false when the table has no columns.
func (i *Introspector) PrimaryKey(ctx context.Context, table string) (name string, ok bool, err error) {
	cols, err := i.DescribeColumns(ctx, table)
	if err != nil || len(cols) == 0 {
		return "", false, err
	}
	return cols[0].Name, true, nil
}

// ListIndexes always returns no indexes.
func (i *Introspector) ListIndexes(ctx context.Context, table string) ([]Index, error) {
	return nil, nil
}
