package api

import (
	"net/url"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/store"
)

const msgInvalidPage = "Invalid page."

// PageQuery holds the pagination query parameters of every list endpoint.
type PageQuery struct {
	Page     int `query:"page" minimum:"1" doc:"Page number, starting at 1"`
	PageSize int `query:"page_size" minimum:"1" doc:"Results per page"`

	url url.URL
}

// Resolve records the request URL so next/previous links keep the other query parameters.
func (q *PageQuery) Resolve(ctx huma.Context) []error {
	q.url = ctx.URL()
	return nil
}

// Page is a paginated listing.
type Page[T any] struct {
	Count    int     `json:"count" doc:"Total number of results"`
	Next     *string `json:"next" doc:"Link to the next page, null on the last page"`
	Previous *string `json:"previous" doc:"Link to the previous page, null on the first page"`
	Results  []T     `json:"results" doc:"Results on this page"`
}

func (s *Server) pageParams(q PageQuery) store.PageParams {
	p := store.PageParams{Page: q.Page, PageSize: q.PageSize}
	p.Normalize(s.opts.PageSize, s.opts.MaxPageSize)
	return p
}

// newPage converts a store page, rejecting pages past the end of a non-empty listing.
func newPage[T, U any](q PageQuery, p store.PageParams, pg store.Page[T], fn func(T) U) (Page[U], error) {
	if p.Page > 1 && len(pg.Items) == 0 {
		return Page[U]{}, domainerrors.NotFound(msgInvalidPage)
	}

	out := store.MapPage(pg, fn)
	page := Page[U]{Count: out.Count, Results: out.Items}
	if pg.HasNext(p) {
		page.Next = pageLink(q.url, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageLink(q.url, p.Page-1)
	}
	return page, nil
}

// pageLink returns a relative link to page n. Page 1 drops the parameter.
func pageLink(u url.URL, n int) *string {
	values := u.Query()
	if n <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(n))
	}

	link := u.Path
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}
