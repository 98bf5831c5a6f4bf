package pagination

import (
	"net/url"
	"strconv"
)

// PageNumber paginates with ?page=N&limit=M. Page defaults to 1 and limit to
// the configured page size.
type PageNumber struct {
	DefaultLimit int
}

func NewPageNumber(defaultLimit int) *PageNumber {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &PageNumber{DefaultLimit: defaultLimit}
}

func (p *PageNumber) Window(params url.Values) (int, int) {
	limit := intParam(params, "limit", p.DefaultLimit)
	if limit == 0 {
		limit = p.DefaultLimit
	}
	page := intParam(params, "page", 1)
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func (p *PageNumber) Links(params url.Values, path string, count int64) (*string, *string) {
	limit, offset := p.Window(params)
	page := offset/limit + 1

	var next, previous *string

	if int64(offset+limit) < count {
		q := cloneValues(params)
		q.Set("page", strconv.Itoa(page+1))
		next = buildLink(path, q)
	}

	if offset > 0 {
		q := cloneValues(params)
		if limit >= offset {
			// previous page is page 1; the page param is simply dropped
			q.Del("page")
		} else {
			q.Set("page", strconv.Itoa(page-1))
		}
		previous = buildLink(path, q)
	}

	return next, previous
}
