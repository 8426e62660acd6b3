package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/store"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Public. Supports search by name.",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Admin only",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCategory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/categories/{slug}",
		Summary:       "Delete category",
		Description:   "Admin only. Titles in the category keep existing without one.",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Public. Supports search by name.",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "createGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres",
		Summary:     "Create genre",
		Description: "Admin only",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteGenre",
		Method:        http.MethodDelete,
		Path:          "/api/v1/genres/{slug}",
		Summary:       "Delete genre",
		Description:   "Admin only. Titles lose the genre but are otherwise untouched.",
		Tags:          []string{"Genres"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteGenre)
}

// === DTOs ===

// SlugResponse is a category or genre in API responses.
type SlugResponse struct {
	Name string `json:"name" doc:"Display name"`
	Slug string `json:"slug" doc:"URL-safe identifier"`
}

func categoryResponse(c domain.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func genreResponse(g domain.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}

// SlugOutput wraps a category or genre for Huma.
type SlugOutput struct {
	Body SlugResponse
}

// ListSlugsInput contains parameters for listing categories or genres.
type ListSlugsInput struct {
	Authorization string `header:"Authorization"`
	Search        string `query:"search" doc:"Name substring"`
	PageQuery
}

// ListSlugsOutput wraps a page of categories or genres for Huma.
type ListSlugsOutput struct {
	Body Page[SlugResponse]
}

// CreateSlugRequest is the request body for creating a category or genre.
type CreateSlugRequest struct {
	_ struct{} `additionalProperties:"true"`

	Name string `json:"name,omitempty" doc:"Display name"`
	Slug string `json:"slug,omitempty" doc:"URL-safe identifier"`
}

// CreateSlugInput wraps the create request for Huma.
type CreateSlugInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateSlugRequest
}

// SlugPathInput identifies a category or genre by slug.
type SlugPathInput struct {
	Authorization string `header:"Authorization"`
	Slug          string `path:"slug" doc:"Slug"`
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, input *ListSlugsInput) (*ListSlugsOutput, error) {
	return listSlugs(ctx, s, input, s.services.Catalog.ListCategories, categoryResponse)
}

func (s *Server) handleListGenres(ctx context.Context, input *ListSlugsInput) (*ListSlugsOutput, error) {
	return listSlugs(ctx, s, input, s.services.Catalog.ListGenres, genreResponse)
}

func listSlugs[T any](
	ctx context.Context,
	s *Server,
	input *ListSlugsInput,
	list func(context.Context, *domain.User, string, store.PageParams) (store.Page[T], error),
	convert func(T) SlugResponse,
) (*ListSlugsOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	p := s.pageParams(input.PageQuery)
	items, err := list(ctx, actor, input.Search, p)
	if err != nil {
		return nil, err
	}

	page, err := newPage(input.PageQuery, p, items, convert)
	if err != nil {
		return nil, err
	}
	return &ListSlugsOutput{Body: page}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateSlugInput) (*SlugOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Catalog.CreateCategory(ctx, actor, service.SlugInput{Name: input.Body.Name, Slug: input.Body.Slug})
	if err != nil {
		return nil, err
	}
	return &SlugOutput{Body: categoryResponse(*c)}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateSlugInput) (*SlugOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	g, err := s.services.Catalog.CreateGenre(ctx, actor, service.SlugInput{Name: input.Body.Name, Slug: input.Body.Slug})
	if err != nil {
		return nil, err
	}
	return &SlugOutput{Body: genreResponse(*g)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *SlugPathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Catalog.DeleteCategory(ctx, actor, input.Slug)
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *SlugPathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Catalog.DeleteGenre(ctx, actor, input.Slug)
}
