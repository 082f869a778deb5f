package model

import (
	"math"
	"strconv"
)

const (
	// DefaultPageLimit applies when no usable limit is given.
	DefaultPageLimit = 10
	// MaxPageLimit caps the rows returned per page.
	MaxPageLimit = 50

	// MaxPage keeps (Page-1)*Limit within an int32 OFFSET.
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// PageRequest is a normalized page/limit pair. 1 <= Page <= MaxPage,
// 1 <= Limit <= MaxPageLimit.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest normalizes page and limit. A non-positive page becomes 1
// and a page past MaxPage is clamped; a non-positive limit becomes
// DefaultPageLimit and anything above MaxPageLimit is clamped.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// ParsePageRequest builds a PageRequest from raw query values; values that
// are not integers fall back to the defaults.
func ParsePageRequest(page, limit string) PageRequest {
	p, err := strconv.Atoi(page)
	if err != nil {
		p = 1
	}
	l, err := strconv.Atoi(limit)
	if err != nil {
		l = DefaultPageLimit
	}
	return NewPageRequest(p, l)
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata returned alongside a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of results plus its pagination metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage assembles a Page. A nil data slice is replaced by an empty one so
// it encodes as [] rather than null.
func NewPage[T any](data []T, req PageRequest, total int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	req = NewPageRequest(req.Page, req.Limit)
	return &Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: (total + req.Limit - 1) / req.Limit,
		},
	}
}
