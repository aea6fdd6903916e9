package adapter_test

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/adapter"
	hive2 "github.com/mumuhhh/hiveadapter/hive"
)

type fakeColumn struct {
	name, typ, comment string
}

type fakeTable struct {
	columns    []fakeColumn
	partitions []fakeColumn
	rows       []string
}

// fakeWarehouse is an in-memory adapter.Runner that understands the
// statements the adapter issues.
type fakeWarehouse struct {
	sync.Mutex

	database string
	tables   map[string]*fakeTable
	log      []string
	closed   bool
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{tables: map[string]*fakeTable{}}
}

func notFound(table string) error {
	return &hive2.ServerError{
		Message:   "Error while compiling statement: FAILED: SemanticException [Error 10001]: Table not found " + table,
		SQLState:  "42S02",
		ErrorCode: 10001,
	}
}

func (w *fakeWarehouse) Exec(ctx context.Context, query string) error {
	w.Lock()
	defer w.Unlock()
	w.log = append(w.log, query)

	switch {
	case strings.HasPrefix(query, "USE "):
		w.database = strings.TrimPrefix(query, "USE ")
	case strings.HasPrefix(query, "CREATE TABLE "):
		return w.createTable(strings.TrimPrefix(query, "CREATE TABLE "))
	case strings.HasPrefix(query, "INSERT OVERWRITE TABLE "):
		name := strings.Fields(strings.TrimPrefix(query, "INSERT OVERWRITE TABLE "))[0]
		t, ok := w.tables[name]
		if !ok {
			return notFound(name)
		}
		t.rows = []string{"X"}
	case strings.HasPrefix(query, "INSERT INTO TABLE "):
		rest := strings.TrimPrefix(query, "INSERT INTO TABLE ")
		name := strings.Fields(rest)[0]
		t, ok := w.tables[name]
		if !ok {
			return notFound(name)
		}
		if _, ok := w.tables[adapter.DualTable]; !ok {
			return notFound(adapter.DualTable)
		}
		t.rows = append(t.rows, strings.TrimPrefix(rest, name+" "))
	case strings.HasPrefix(query, "DROP TABLE "):
		name := strings.TrimPrefix(query, "DROP TABLE ")
		if strings.HasPrefix(name, "IF EXISTS ") {
			delete(w.tables, strings.TrimPrefix(name, "IF EXISTS "))
			return nil
		}
		if _, ok := w.tables[name]; !ok {
			return notFound(name)
		}
		delete(w.tables, name)
	default:
		return &hive2.ServerError{
			Message:   "ParseException line 1:0 cannot recognize input near '" + query + "'",
			SQLState:  "42000",
			ErrorCode: 40000,
		}
	}
	return nil
}

func (w *fakeWarehouse) Query(ctx context.Context, query string) (*adapter.Result, error) {
	w.Lock()
	defer w.Unlock()
	w.log = append(w.log, query)

	switch {
	case query == "SHOW TABLES":
		res := &adapter.Result{Columns: []string{"tab_name"}}
		for name := range w.tables {
			res.Rows = append(res.Rows, []interface{}{name})
		}
		return res, nil
	case strings.HasPrefix(query, "SHOW TABLES '"):
		name := strings.TrimSuffix(strings.TrimPrefix(query, "SHOW TABLES '"), "'")
		res := &adapter.Result{Columns: []string{"tab_name"}}
		if _, ok := w.tables[name]; ok {
			res.Rows = append(res.Rows, []interface{}{name})
		}
		return res, nil
	case strings.HasPrefix(query, "DESCRIBE "):
		name := strings.TrimPrefix(query, "DESCRIBE ")
		t, ok := w.tables[name]
		if !ok {
			return nil, notFound(name)
		}
		return t.describe(), nil
	case strings.HasPrefix(query, "SELECT * FROM "):
		name := strings.TrimPrefix(query, "SELECT * FROM ")
		t, ok := w.tables[name]
		if !ok {
			return nil, notFound(name)
		}
		res := &adapter.Result{Columns: []string{"row"}}
		for _, r := range t.rows {
			res.Rows = append(res.Rows, []interface{}{r})
		}
		return res, nil
	}
	return nil, errors.Errorf("fake warehouse cannot run %q", query)
}

func (w *fakeWarehouse) Close() error {
	w.Lock()
	defer w.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWarehouse) statements() []string {
	w.Lock()
	defer w.Unlock()
	return append([]string(nil), w.log...)
}

func (t *fakeTable) describe() *adapter.Result {
	res := &adapter.Result{Columns: []string{"col_name", "data_type", "comment"}}
	add := func(cols []fakeColumn) {
		for _, c := range cols {
			res.Rows = append(res.Rows, []interface{}{c.name, strings.ToLower(c.typ), c.comment})
		}
	}
	add(t.columns)
	add(t.partitions)
	if len(t.partitions) > 0 {
		res.Rows = append(res.Rows,
			[]interface{}{"", nil, nil},
			[]interface{}{"# Partition Information", nil, nil},
			[]interface{}{"# col_name            ", "data_type           ", "comment             "},
		)
		add(t.partitions)
	}
	return res
}

func (w *fakeWarehouse) createTable(ddl string) error {
	ddl = strings.TrimPrefix(ddl, "IF NOT EXISTS ")
	open := strings.Index(ddl, " (")
	if open < 0 {
		return errors.Errorf("fake warehouse: bad DDL %q", ddl)
	}
	name := ddl[:open]
	if _, ok := w.tables[name]; ok {
		return &hive2.ServerError{
			Message:   "AlreadyExistsException(message:Table " + name + " already exists)",
			SQLState:  "08S01",
			ErrorCode: 1,
		}
	}
	cols, rest, err := columnList(ddl[open+1:])
	if err != nil {
		return err
	}
	t := &fakeTable{columns: cols}
	if i := strings.Index(rest, "PARTITIONED BY ("); i >= 0 {
		if t.partitions, _, err = columnList(rest[i+len("PARTITIONED BY "):]); err != nil {
			return err
		}
	}
	w.tables[name] = t
	return nil
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\'`, `'`)

// columnList parses "(<def>, <def>) rest" where each def is
// "<name> <type> [COMMENT '<text>']".
func columnList(s string) ([]fakeColumn, string, error) {
	var (
		defs    []string
		depth   int
		inQuote bool
		start   = 1
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\':
			i++
		case c == '\'':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				defs = append(defs, s[start:i])
				return parseDefs(defs), s[i+1:], nil
			}
		case c == ',' && depth == 1:
			defs = append(defs, s[start:i])
			start = i + 1
		}
	}
	return nil, "", errors.Errorf("fake warehouse: unbalanced column list %q", s)
}

func parseDefs(defs []string) []fakeColumn {
	cols := make([]fakeColumn, 0, len(defs))
	for _, d := range defs {
		d = strings.TrimSpace(d)
		sp := strings.Index(d, " ")
		col := fakeColumn{name: d[:sp]}
		rest := d[sp+1:]
		if i := strings.Index(rest, " COMMENT '"); i >= 0 {
			col.typ = rest[:i]
			quoted := rest[i+len(" COMMENT "):]
			col.comment = unescaper.Replace(quoted[1 : len(quoted)-1])
		} else {
			col.typ = rest
		}
		cols = append(cols, col)
	}
	return cols
}
