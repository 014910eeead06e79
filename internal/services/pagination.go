package services

import "strconv"

// Page is a normalised page request. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Skip returns the number of records before the page.
func (p Page) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Paginator turns untrusted page/limit query values into a Page.
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize parses page and limit. Missing, non-numeric or non-positive
// values fall back to page 1 and the default limit; limit is capped at MaxLimit.
func (p Paginator) Normalize(page, limit string) Page {
	pg, err := strconv.Atoi(page)
	if err != nil || pg < 1 {
		pg = 1
	}

	lim, err := strconv.Atoi(limit)
	if err != nil || lim < 1 {
		lim = p.DefaultLimit
	}
	if lim > p.MaxLimit {
		lim = p.MaxLimit
	}

	// keep Skip() from overflowing on absurd page numbers
	if maxPage := maxInt / lim; pg > maxPage {
		pg = maxPage
	}

	return Page{Page: pg, Limit: lim}
}

const maxInt = int(^uint(0) >> 1)
