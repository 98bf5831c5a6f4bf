package filter

import (
	"net/url"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Where parses field__operator=value query pairs into predicates against an
// allow-list of fields. A bare field=value pair means equality, and an or__
// prefix ORs the condition instead of ANDing it. Unsupported field/operator
// combinations are dropped so malformed client input never fails the request.
type Where struct {
	allowed map[string]bool
}

func NewWhere(fields ...string) *Where {
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	return &Where{allowed: allowed}
}

func (w *Where) Apply(tx *gorm.DB, params url.Values) *gorm.DB {
	// deterministic application order
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if reserved[key] {
			continue
		}
		value := params.Get(key)

		cond := key
		or := false
		if strings.HasPrefix(cond, "or__") {
			or = true
			cond = strings.TrimPrefix(cond, "or__")
		}

		field, op := cond, "eq"
		if i := strings.Index(cond, "__"); i >= 0 {
			field, op = cond[:i], cond[i+2:]
		}
		if !w.allowed[field] {
			continue
		}

		clause, args, ok := buildCondition(qualify(tx, field), op, value)
		if !ok {
			continue
		}
		if or {
			tx = tx.Or(clause, args...)
		} else {
			tx = tx.Where(clause, args...)
		}
	}
	return tx
}

func buildCondition(column, op, value string) (string, []interface{}, bool) {
	switch op {
	case "eq":
		return column + " = ?", []interface{}{value}, true
	case "ne":
		return column + " <> ?", []interface{}{value}, true
	case "gt":
		return column + " > ?", []interface{}{value}, true
	case "gte":
		return column + " >= ?", []interface{}{value}, true
	case "lt":
		return column + " < ?", []interface{}{value}, true
	case "lte":
		return column + " <= ?", []interface{}{value}, true
	case "contains":
		return column + " LIKE ?", []interface{}{"%" + value + "%"}, true
	case "icontains":
		return "LOWER(" + column + ") LIKE LOWER(?)", []interface{}{"%" + value + "%"}, true
	case "startswith":
		return column + " LIKE ?", []interface{}{value + "%"}, true
	case "endswith":
		return column + " LIKE ?", []interface{}{"%" + value}, true
	case "in":
		parts := strings.Split(value, ",")
		vals := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			vals = append(vals, p)
		}
		return column + " IN ?", []interface{}{vals}, true
	case "isnull":
		switch value {
		case "true", "1":
			return column + " IS NULL", nil, true
		case "false", "0":
			return column + " IS NOT NULL", nil, true
		}
		return "", nil, false
	default:
		return "", nil, false
	}
}
