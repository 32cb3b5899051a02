package db

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the semantic type a column is coerced into.
type Kind int

const (
	// KindAuto keeps the driver value, with []byte turned into string.
	KindAuto Kind = iota
	KindString
	KindInt
	KindDecimal
	// KindDate is a calendar date: midnight UTC of the stored day.
	KindDate
	// KindTime is an instant normalized to UTC.
	KindTime
	// KindFlag is a raw single-character code such as Y/N.
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindFlag:
		return "flag"
	default:
		return "auto"
	}
}

// Schema maps lower-case column names to kinds.
type Schema map[string]Kind

// Strings builds a Schema where every column is KindString.
func Strings(cols ...string) Schema {
	s := make(Schema, len(cols))
	for _, c := range cols {
		s[c] = KindString
	}
	return s
}

// With returns a copy of s extended by other.
func (s Schema) With(other Schema) Schema {
	out := make(Schema, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// TextOnly reports whether every declared column maps to a string value.
func (s Schema) TextOnly() bool {
	for _, k := range s {
		if k != KindString && k != KindFlag {
			return false
		}
	}
	return true
}

// Row is one mapped result row keyed by lower-case column name. NULL columns
// are present with a nil value.
type Row map[string]any

// String returns a string column; ok is false for NULL or missing columns.
func (r Row) String(col string) (string, bool) {
	v, ok := r[col].(string)
	return v, ok
}

// Flag returns a raw flag column.
func (r Row) Flag(col string) (string, bool) {
	return r.String(col)
}

// Int returns an integer column.
func (r Row) Int(col string) (int64, bool) {
	v, ok := r[col].(int64)
	return v, ok
}

// Decimal returns a decimal column.
func (r Row) Decimal(col string) (decimal.Decimal, bool) {
	v, ok := r[col].(decimal.Decimal)
	return v, ok
}

// Time returns a date or time column.
func (r Row) Time(col string) (time.Time, bool) {
	v, ok := r[col].(time.Time)
	return v, ok
}

// IsNull reports whether col is NULL or absent.
func (r Row) IsNull(col string) bool {
	return r[col] == nil
}

// MapRows drains rows into Rows coerced by schema. The result is never nil.
// The caller still owns rows and must close it.
func MapRows(rows *sql.Rows, schema Schema) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}

	results := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v, err := Coerce(schema[col], values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			row[col] = v
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Coerce converts a driver value into the Go type for kind. nil stays nil.
func Coerce(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch kind {
	case KindString:
		return toString(v), nil
	case KindFlag:
		return strings.TrimSpace(toString(v)), nil
	case KindInt:
		return toInt(v)
	case KindDecimal:
		return toDecimal(v)
	case KindDate:
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case KindTime:
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	default:
		return v, nil
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil || !d.IsInteger() {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return d.IntPart(), nil
	case decimal.Decimal:
		if !x.IsInteger() {
			return nil, fmt.Errorf("%s is not an integer", x)
		}
		return x.IntPart(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func toDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%q is not a decimal", x)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not a date or time", x)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}
