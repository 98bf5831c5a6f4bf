package filter

import (
	"net/url"

	"gorm.io/gorm"
)

// Query wraps an arbitrary predicate function, for conditions that cannot be
// expressed as field/operator pairs (ownership scoping, joins, and so on).
type Query struct {
	fn func(tx *gorm.DB, params url.Values) *gorm.DB
}

func NewQuery(fn func(tx *gorm.DB, params url.Values) *gorm.DB) *Query {
	return &Query{fn: fn}
}

func (q *Query) Apply(tx *gorm.DB, params url.Values) *gorm.DB {
	if q.fn == nil {
		return tx
	}
	return q.fn(tx, params)
}
