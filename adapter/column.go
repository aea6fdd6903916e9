package adapter

import "strings"

// Column is a table column as recovered from DESCRIBE. Columns are built
// fresh on every call and never cached.
type Column struct {
	Name    string
	SQLType string
	Null    bool
	Default *string

	// RequestedType and Partition come from the packed comment, when the
	// table was created through this package.
	RequestedType LogicalType
	Partition     bool
	// Comment holds a comment that is not a metadata envelope.
	Comment string
}

type columnKind int

const (
	kindUnknown columnKind = iota
	kindNumeric
	kindBoolean
	kindString
	kindTime
	kindDate
	kindBinary
	kindArray
)

func (c *Column) kind() columnKind {
	if c == nil {
		return kindUnknown
	}
	t := strings.ToUpper(strings.TrimSpace(c.SQLType))
	switch {
	case strings.HasPrefix(t, "ARRAY"):
		return kindArray
	case strings.HasPrefix(t, TypeTinyInt), strings.HasPrefix(t, TypeSmallInt),
		strings.HasPrefix(t, TypeBigInt), strings.HasPrefix(t, TypeInt),
		strings.HasPrefix(t, TypeFloat), strings.HasPrefix(t, TypeDouble),
		strings.HasPrefix(t, TypeDecimal):
		return kindNumeric
	case t == TypeBoolean:
		return kindBoolean
	case t == TypeString, strings.HasPrefix(t, "VARCHAR"), strings.HasPrefix(t, "CHAR"):
		return kindString
	case t == TypeTime:
		return kindTime
	case t == "DATE":
		return kindDate
	case t == TypeBinary:
		return kindBinary
	}
	return kindUnknown
}
