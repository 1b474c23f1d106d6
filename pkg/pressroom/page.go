package pressroom

// SortOrder is the direction of a list sort.
type SortOrder string

// Sort order constants.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination bounds applied by Normalize.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest describes one page of a listing. Both adapters interpret
// it identically: rows are ordered by SortBy (falling back to creation
// time), ties broken by id so repeated calls see stable boundaries,
// and the page starts at offset (page-1)*limit.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Normalize clamps the request into valid bounds and fills defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		p.SortOrder = SortDesc
	}
	return p
}

// Offset returns the number of rows to skip. Callers normalize first.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of results plus the totals a client needs to walk
// the listing.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles a Page from an already-sliced data window and the
// full result count. TotalPages is ceil(total/limit).
func NewPage[T any](data []T, total int, req PageRequest) *Page[T] {
	totalPages := 0
	if total > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		TotalPages: totalPages,
	}
}
