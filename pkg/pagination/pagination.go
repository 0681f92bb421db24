package pagination

// Offset pagination. The POS clients page transaction history with
// page/size query params and render total counts, so cursor pagination
// does not fit here.

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 25
	// MaxSize caps how many rows any paged query can request.
	MaxSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the configured defaults and maximum page size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().Size
}

// Page wraps one page of results with its counts.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a Page from the fetched rows and the total row count.
func NewPage[T any](items []T, params Params, totalCount int64) Page[T] {
	n := params.Normalize()
	totalPages := int((totalCount + int64(n.Size) - 1) / int64(n.Size))
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       n.Page,
		Size:       n.Size,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
