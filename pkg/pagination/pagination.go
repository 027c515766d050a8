package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page at the default page size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest reads ?page= and ?per_page= (or its alias ?limit=). Invalid or
// out-of-range values fall back to defaults; per_page above MaxPerPage is
// capped rather than rejected.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}

	raw := q.Get("per_page")
	if raw == "" {
		raw = q.Get("limit")
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		p.PerPage = min(v, MaxPerPage)
	}

	return p
}

// Offset is the number of rows to skip for this page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Limit is the number of rows to fetch for this page.
func (p Params) Limit() int {
	return p.PerPage
}
