package pagination

import (
	"net/url"
	"strconv"
)

// LimitOffset paginates with ?limit=M&offset=N, the raw-window counterpart of
// PageNumber.
type LimitOffset struct {
	DefaultLimit int
}

func NewLimitOffset(defaultLimit int) *LimitOffset {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &LimitOffset{DefaultLimit: defaultLimit}
}

func (p *LimitOffset) Window(params url.Values) (int, int) {
	limit := intParam(params, "limit", p.DefaultLimit)
	if limit == 0 {
		limit = p.DefaultLimit
	}
	return limit, intParam(params, "offset", 0)
}

func (p *LimitOffset) Links(params url.Values, path string, count int64) (*string, *string) {
	limit, offset := p.Window(params)

	var next, previous *string

	if int64(offset+limit) < count {
		q := cloneValues(params)
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset+limit))
		next = buildLink(path, q)
	}

	if offset > 0 {
		q := cloneValues(params)
		q.Set("limit", strconv.Itoa(limit))
		if limit >= offset {
			// the previous window starts at the beginning
			q.Del("offset")
		} else {
			q.Set("offset", strconv.Itoa(offset-limit))
		}
		previous = buildLink(path, q)
	}

	return next, previous
}
