package db

import (
	"github.com/Masterminds/squirrel"
)

// Dialect describes how statements are bound for one database product.
// Catalog statements are written with ? placeholders and rebound per dialect.
type Dialect struct {
	Name         string // OpenTelemetry db.system value
	DriverName   string
	Placeholders squirrel.PlaceholderFormat
}

var (
	// Oracle is the campus EDO production database.
	Oracle = Dialect{Name: "oracle", DriverName: "oracle", Placeholders: squirrel.Colon}
	// Postgres backs the sandbox replica used when edodb.fake is set.
	Postgres = Dialect{Name: "postgresql", DriverName: "pgx", Placeholders: squirrel.Dollar}
	// Question leaves ? placeholders untouched. Used by tests.
	Question = Dialect{Name: "other_sql", DriverName: "", Placeholders: squirrel.Question}
)

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) (string, error) {
	if d.Placeholders == nil {
		return query, nil
	}
	return d.Placeholders.ReplacePlaceholders(query)
}
