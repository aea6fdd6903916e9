package adapter

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQuerier answers queries from a fixed table and records what it ran.
type stubQuerier struct {
	results map[string]*Result
	ran     []string
}

func (s *stubQuerier) Query(ctx context.Context, query string) (*Result, error) {
	s.ran = append(s.ran, query)
	if res, ok := s.results[query]; ok {
		return res, nil
	}
	return nil, errors.Errorf("unexpected query %q", query)
}

func newStubQuerier() *stubQuerier {
	return &stubQuerier{results: map[string]*Result{
		"SHOW TABLES":           {Columns: []string{"tab_name"}, Rows: [][]interface{}{{"dual"}, {"events"}}},
		"SHOW TABLES 'events'":  {Columns: []string{"tab_name"}, Rows: [][]interface{}{{"events"}}},
		"SHOW TABLES 'missing'": {Columns: []string{"tab_name"}},
		"SHOW TABLES 'empty'":   {Columns: []string{"tab_name"}, Rows: [][]interface{}{{"empty"}}},
		"DESCRIBE events": {
			Columns: []string{"col_name", "data_type", "comment"},
			Rows: [][]interface{}{
				{"a", "int", ""},
				{"b", "string", ""},
				{"c", "timestamp", ""},
			},
		},
		"DESCRIBE empty": {Columns: []string{"col_name", "data_type", "comment"}},
	}}
}

func TestIntrospectorListTables(t *testing.T) {
	names, err := NewIntrospector(newStubQuerier()).ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dual", "events"}, names)
}

func TestIntrospectorTableExists(t *testing.T) {
	in := NewIntrospector(newStubQuerier())

	ok, err := in.TableExists(context.Background(), "events")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = in.TableExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntrospectorDescribeColumnsKeepsOrder(t *testing.T) {
	cols, err := NewIntrospector(newStubQuerier()).DescribeColumns(context.Background(), "events")
	require.NoError(t, err)

	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestIntrospectorDescribeMissingTable(t *testing.T) {
	q := newStubQuerier()
	cols, err := NewIntrospector(q).DescribeColumns(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, cols)
	assert.Equal(t, []string{"SHOW TABLES 'missing'"}, q.ran)
}

func TestIntrospectorPrimaryKey(t *testing.T) {
	in := NewIntrospector(newStubQuerier())

	name, ok, err := in.PrimaryKey(context.Background(), "events")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", name)

	for _, table := range []string{"missing", "empty"} {
		name, ok, err = in.PrimaryKey(context.Background(), table)
		require.NoError(t, err)
		assert.False(t, ok, table)
		assert.Empty(t, name, table)
	}
}

func TestIntrospectorListIndexes(t *testing.T) {
	q := newStubQuerier()
	indexes, err := NewIntrospector(q).ListIndexes(context.Background(), "events")
	require.NoError(t, err)
	assert.Empty(t, indexes)
	assert.Empty(t, q.ran)
}
