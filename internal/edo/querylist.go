package edo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"edoquery/internal/terms"
)

// ErrInvalidIdentifier is returned when an identifier cannot be rendered
// safely into a SQL literal list.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// TermIdentifier is anything that knows its SIS term id, such as terms.Term.
type TermIdentifier interface {
	CampusSolutionsID() string
}

// QueryList renders values as a comma separated SQL literal list suitable
// for an IN (...) clause. Integers are rendered bare; strings and terms are
// single-quoted with embedded quotes doubled. Order and duplicates are
// preserved and an empty input renders as "".
func QueryList(values ...any) (string, error) {
	if len(values) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(values))
	for i, v := range values {
		lit, err := literal(v)
		if err != nil {
			return "", fmt.Errorf("element %d: %w", i, err)
		}
		parts = append(parts, lit)
	}
	return strings.Join(parts, ","), nil
}

// StringList renders ids as quoted literals.
func StringList(ids []string) (string, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return QueryList(values...)
}

// TermsQueryList renders the filter's term ids, e.g. "'2182','2188'". An
// empty filter renders as "".
func TermsQueryList(filter terms.Filter) (string, error) {
	values := make([]any, len(filter))
	for i, t := range filter {
		values[i] = t
	}
	return QueryList(values...)
}

func literal(v any) (string, error) {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case string:
		return quote(x)
	case TermIdentifier:
		return quote(x.CampusSolutionsID())
	case fmt.Stringer:
		return quote(x.String())
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidIdentifier, v)
	}
}

// quote rejects blank identifiers and characters that have no place in a SIS
// id: control characters, statement separators and bind markers.
func quote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: blank", ErrInvalidIdentifier)
	}
	for _, r := range s {
		if unicode.IsControl(r) || r == ';' || r == '?' {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
		}
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}
