package store

// Default page sizes used when the caller does not configure them.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams selects one page of a listing. Pages are numbered from 1.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize clamps the parameters into range.
func (p *PageParams) Normalize(defaultSize, maxSize int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Offset returns the number of rows before the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of results plus the total row count.
type Page[T any] struct {
	Items []T
	Count int
}

// HasNext reports whether rows exist after this page.
func (pg Page[T]) HasNext(p PageParams) bool {
	return p.Offset()+len(pg.Items) < pg.Count
}

// MapPage converts the items of a page.
func MapPage[T, U any](pg Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Items: make([]U, 0, len(pg.Items)), Count: pg.Count}
	for _, item := range pg.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
