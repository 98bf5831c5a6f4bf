// Package filter composes predicate fragments onto a gorm query from request
// query parameters. Filters never fail a request: malformed or unknown
// conditions are dropped.
package filter

import (
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// Filter applies a predicate fragment derived from the request's query
// parameters onto the list query.
type Filter interface {
	Apply(tx *gorm.DB, params url.Values) *gorm.DB
}

// reserved names are managed by pagination, search and ordering and are never
// interpreted as where conditions.
var reserved = map[string]bool{
	"page":   true,
	"limit":  true,
	"offset": true,
	"search": true,
	"sortBy": true,
}

// qualify namespaces a bare column to the query's root table. A dotted name
// references a joined relation and passes through unmodified.
func qualify(tx *gorm.DB, field string) string {
	if strings.Contains(field, ".") {
		return field
	}
	if tx.Statement.Table != "" {
		return tx.Statement.Table + "." + field
	}
	if tx.Statement.Model != nil {
		if err := tx.Statement.Parse(tx.Statement.Model); err == nil && tx.Statement.Schema != nil {
			return tx.Statement.Schema.Table + "." + field
		}
	}
	return field
}
