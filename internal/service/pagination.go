package service

// Default page sizes per resource; every list endpoint caps at MaxLimit.
const (
	MaxLimit            = 100
	DefaultTenantLimit  = 10
	DefaultProjectLimit = 20
	DefaultTaskLimit    = 50
)

// PageRequest is a normalized page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NormalizePage clamps raw page/limit input: page floors at 1, limit
// falls back to the resource default and never exceeds MaxLimit.
func NormalizePage(page, limit, defaultLimit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the page descriptor returned with every list response.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(req PageRequest, total int64) Pagination {
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Pagination{
		CurrentPage: req.Page,
		TotalPages:  pages,
		Limit:       req.Limit,
	}
}
