package adapter

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	timestampLayout = "2006-01-02 15:04:05.999999999"
	dateLayout      = "2006-01-02"

	// maxQuoteDepth bounds Valuer and pointer chains.
	maxQuoteDepth = 8
)

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// decimalPattern matches the number forms Hive reads as numeric literals.
var decimalPattern = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// QuoteString returns s as a Hive string literal.
func QuoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

// Quote renders value as a Hive literal suitable for col's declared type.
// SQLLiteral values are returned verbatim. driver.Valuer values are
// rendered from their Value and pointers from what they point to; a nil
// pointer is NULL. Values of any other type are an error.
func Quote(value interface{}, col *Column) (string, error) {
	return quote(value, col, 0)
}

func quote(value interface{}, col *Column, depth int) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	if depth > maxQuoteDepth {
		return "", errors.Errorf("quote %T: Valuer or pointer nesting deeper than %d", value, maxQuoteDepth)
	}
	if lit, ok := value.(SQLLiteral); ok {
		return string(lit), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return "NULL", nil
	}
	if valuer, ok := value.(driver.Valuer); ok {
		v, err := valuer.Value()
		if err != nil {
			return "", errors.Wrapf(err, "quote %T", value)
		}
		return quote(v, col, depth+1)
	}

	kind := col.kind()
	switch v := value.(type) {
	case bool:
		return quoteBool(v, kind), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return quoteNumber(fmt.Sprint(v), kind), nil
	case float32:
		return quoteFloat(float64(v), 32, kind), nil
	case float64:
		return quoteFloat(v, 64, kind), nil
	case string:
		if kind == kindNumeric {
			if n := strings.TrimSpace(v); decimalPattern.MatchString(n) {
				return n, nil
			}
		}
		return QuoteString(v), nil
	case []byte:
		return QuoteString(string(v)), nil
	case time.Time:
		if kind == kindDate {
			return QuoteString(v.Format(dateLayout)), nil
		}
		return QuoteString(v.Format(timestampLayout)), nil
	case []string:
		items := make([]string, len(v))
		for i, s := range v {
			items[i] = QuoteString(s)
		}
		return "array(" + strings.Join(items, ", ") + ")", nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		return quote(rv.Elem().Interface(), col, depth+1)
	case reflect.Bool:
		return quoteBool(rv.Bool(), kind), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return quoteNumber(strconv.FormatInt(rv.Int(), 10), kind), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return quoteNumber(strconv.FormatUint(rv.Uint(), 10), kind), nil
	case reflect.Float32:
		return quoteFloat(rv.Float(), 32, kind), nil
	case reflect.Float64:
		return quoteFloat(rv.Float(), 64, kind), nil
	case reflect.String:
		return quote(rv.String(), col, depth)
	}
	if s, ok := value.(fmt.Stringer); ok {
		return QuoteString(s.String()), nil
	}
	return "", errors.Errorf("cannot render %T as a Hive literal", value)
}

func quoteBool(v bool, kind columnKind) string {
	switch kind {
	case kindNumeric:
		if v {
			return "1"
		}
		return "0"
	case kindString:
		return QuoteString(strconv.FormatBool(v))
	}
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// quoteFloat renders NaN and the infinities through a string cast, since
// Hive has no literal for them.
func quoteFloat(f float64, bits int, kind columnKind) string {
	var special string
	switch {
	case math.IsNaN(f):
		special = "NaN"
	case math.IsInf(f, 1):
		special = "Infinity"
	case math.IsInf(f, -1):
		special = "-Infinity"
	}
	if special == "" {
		return quoteNumber(strconv.FormatFloat(f, 'g', -1, bits), kind)
	}
	if kind == kindString {
		return QuoteString(special)
	}
	return "CAST(" + QuoteString(special) + " AS DOUBLE)"
}

func quoteNumber(n string, kind columnKind) string {
	switch kind {
	case kindString, kindTime, kindDate, kindBinary:
		return QuoteString(n)
	}
	return n
}
