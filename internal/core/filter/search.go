package filter

import (
	"errors"
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// Search ORs a contains predicate across the configured fields when the
// request carries a non-empty ?search= term.
type Search struct {
	fields []string
}

// NewSearch fails when no searchable fields are configured; an empty search
// filter is a wiring mistake, not a runtime condition.
func NewSearch(fields ...string) (*Search, error) {
	if len(fields) == 0 {
		return nil, errors.New("filter: search filter requires at least one field")
	}
	return &Search{fields: fields}, nil
}

// MustSearch is NewSearch for composition roots, panicking on misuse.
func MustSearch(fields ...string) *Search {
	s, err := NewSearch(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Search) Apply(tx *gorm.DB, params url.Values) *gorm.DB {
	term := strings.TrimSpace(params.Get("search"))
	if term == "" {
		return tx
	}

	pattern := "%" + term + "%"
	conds := make([]string, 0, len(s.fields))
	args := make([]interface{}, 0, len(s.fields))
	for _, f := range s.fields {
		conds = append(conds, qualify(tx, f)+" LIKE ?")
		args = append(args, pattern)
	}
	return tx.Where(strings.Join(conds, " OR "), args...)
}
