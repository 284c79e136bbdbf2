package pagination

// Pagination is the offset page request shared by listing endpoints.
type Pagination struct {
	Page    int `form:"page,default=1" validate:"gte=1"`
	PerPage int `form:"per_page,default=20" validate:"gte=1,lte=250"` // Min 1, Max 250
}

// PageInfo describes one materialized page of a filtered set.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Normalize clamps the request to sane values.
func (p Pagination) Normalize(defaultPerPage int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	return p
}

// Bounds returns the half-open slice bounds [low, high) for a set of
// total elements. An out-of-range page yields an empty slice, never a panic.
func (p Pagination) Bounds(total int) (int, int) {
	low := (p.Page - 1) * p.PerPage
	if low > total {
		low = total
	}
	high := low + p.PerPage
	if high > total {
		high = total
	}
	return low, high
}

// Info builds the page metadata for a filtered total.
func (p Pagination) Info(total int) PageInfo {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.PerPage - 1) / p.PerPage
	}
	return PageInfo{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
