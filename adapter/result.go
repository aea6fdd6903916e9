package adapter

// Result is the tabular answer to a query: column names and rows of driver
// values (int64, float64, bool, string, []byte, time.Time or nil).
type Result struct {
	Columns []string
	Rows    [][]interface{}
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Column returns the values of the named column, or nil if no column has
// that name.
func (r *Result) Column(name string) []interface{} {
	idx := -1
	for i, c := range r.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, nil)
		}
	}
	return values
}
