package filter

import (
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// Order applies ?sortBy=field ordering against an allow-list. A leading minus
// sorts descending (sortBy=-created_at); unknown fields are dropped.
type Order struct {
	allowed      map[string]bool
	defaultOrder string
}

func NewOrder(defaultOrder string, fields ...string) *Order {
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	return &Order{allowed: allowed, defaultOrder: defaultOrder}
}

func (o *Order) Apply(tx *gorm.DB, params url.Values) *gorm.DB {
	raw := params.Get("sortBy")
	if raw == "" {
		if o.defaultOrder != "" {
			return tx.Order(o.defaultOrder)
		}
		return tx
	}

	applied := false
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		desc := strings.HasPrefix(token, "-")
		field := strings.TrimPrefix(token, "-")
		if !o.allowed[field] {
			continue
		}
		order := qualify(tx, field)
		if desc {
			order += " DESC"
		}
		tx = tx.Order(order)
		applied = true
	}
	if !applied && o.defaultOrder != "" {
		tx = tx.Order(o.defaultOrder)
	}
	return tx
}
