// Package pagination provides the two windowing strategies the list endpoint
// supports: page numbers and raw limit/offset. Both slice the query and
// compute next/previous navigation links by rewriting only the query
// parameters they manage, preserving everything else the client sent.
package pagination

import (
	"net/url"
	"strconv"
)

// Strategy slices a list query and computes navigation links. Links returns
// nil for a missing next/previous page, never an empty string; an unparsable
// request path yields nil for both links rather than an error.
type Strategy interface {
	Window(params url.Values) (limit, offset int)
	Links(params url.Values, path string, count int64) (next, previous *string)
}

func intParam(params url.Values, key string, fallback int) int {
	raw := params.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func cloneValues(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, vs := range params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// buildLink rebuilds the request path with the given query values. Returns
// nil when the path cannot be parsed.
func buildLink(path string, q url.Values) *string {
	u, err := url.Parse(path)
	if err != nil {
		return nil
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
