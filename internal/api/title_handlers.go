package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerTitleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles",
		Summary:     "List titles",
		Description: "Public. Filter by category or genre slug, name substring and year.",
		Tags:        []string{"Titles"},
	}, s.handleListTitles)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTitle",
		Method:      http.MethodPost,
		Path:        "/api/v1/titles",
		Summary:     "Create title",
		Description: "Admin only. Category and genres are given by slug.",
		Tags:        []string{"Titles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title_id}",
		Summary:     "Get title",
		Tags:        []string{"Titles"},
	}, s.handleGetTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTitle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/titles/{title_id}",
		Summary:     "Update title",
		Description: "Admin only. A genre list replaces the current genres.",
		Tags:        []string{"Titles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTitle)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTitle",
		Method:        http.MethodDelete,
		Path:          "/api/v1/titles/{title_id}",
		Summary:       "Delete title",
		Description:   "Admin only. Removes the title's reviews and their comments.",
		Tags:          []string{"Titles"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTitle)
}

// === DTOs ===

// TitleResponse contains title data in API responses.
type TitleResponse struct {
	ID          int64          `json:"id" doc:"Title ID"`
	Name        string         `json:"name" doc:"Title name"`
	Year        int            `json:"year" doc:"Year of release"`
	Rating      *int           `json:"rating" doc:"Mean review score, null without reviews"`
	Description *string        `json:"description" doc:"Description, null when unset"`
	Genre       []SlugResponse `json:"genre" doc:"Genres"`
	Category    *SlugResponse  `json:"category" doc:"Category, null when unset"`
}

func toTitleResponse(t domain.Title) TitleResponse {
	resp := TitleResponse{
		ID:     t.ID,
		Name:   t.Name,
		Year:   t.Year,
		Rating: t.Rating,
		Genre:  make([]SlugResponse, 0, len(t.Genres)),
	}
	if t.Description != "" {
		resp.Description = &t.Description
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, genreResponse(g))
	}
	if t.Category != nil {
		c := categoryResponse(*t.Category)
		resp.Category = &c
	}
	return resp
}

// TitleOutput wraps a title for Huma.
type TitleOutput struct {
	Body TitleResponse
}

// ListTitlesInput contains parameters for listing titles.
type ListTitlesInput struct {
	Authorization string `header:"Authorization"`
	Category      string `query:"category" doc:"Category slug"`
	Genre         string `query:"genre" doc:"Genre slug"`
	Name          string `query:"name" doc:"Name substring"`
	Year          string `query:"year" doc:"Exact year"`
	Ordering      string `query:"ordering" doc:"One of name, -name, year, -year"`
	PageQuery
}

func (in *ListTitlesInput) filter() (domain.TitleFilter, error) {
	f := domain.TitleFilter{
		CategorySlug: in.Category,
		GenreSlug:    in.Genre,
		Name:         in.Name,
		Ordering:     in.Ordering,
	}
	if in.Year != "" {
		year, err := strconv.Atoi(in.Year)
		if err != nil {
			return f, domainerrors.Field("year", "Enter a number.")
		}
		f.Year = &year
	}
	return f, nil
}

// ListTitlesOutput wraps a page of titles for Huma.
type ListTitlesOutput struct {
	Body Page[TitleResponse]
}

// TitleRequest is the request body for creating or updating a title.
// Omitted fields are left unchanged on update.
type TitleRequest struct {
	_ struct{} `additionalProperties:"true"`

	Name        *string  `json:"name,omitempty" doc:"Title name"`
	Year        *int     `json:"year,omitempty" doc:"Year of release, not in the future"`
	Description *string  `json:"description,omitempty" doc:"Description"`
	Category    *string  `json:"category,omitempty" doc:"Category slug"`
	Genre       []string `json:"genre,omitempty" doc:"Genre slugs"`
}

func (r TitleRequest) input() service.TitleInput {
	return service.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genre:       r.Genre,
	}
}

// CreateTitleInput wraps the create title request for Huma.
type CreateTitleInput struct {
	Authorization string `header:"Authorization"`
	Body          TitleRequest
}

// TitlePathInput identifies a title.
type TitlePathInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
}

// UpdateTitleInput wraps the update title request for Huma.
type UpdateTitleInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	Body          TitleRequest
}

// === Handlers ===

func (s *Server) handleListTitles(ctx context.Context, input *ListTitlesInput) (*ListTitlesOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	filter, err := input.filter()
	if err != nil {
		return nil, err
	}

	p := s.pageParams(input.PageQuery)
	titles, err := s.services.Titles.List(ctx, actor, filter, p)
	if err != nil {
		return nil, err
	}

	page, err := newPage(input.PageQuery, p, titles, toTitleResponse)
	if err != nil {
		return nil, err
	}
	return &ListTitlesOutput{Body: page}, nil
}

func (s *Server) handleCreateTitle(ctx context.Context, input *CreateTitleInput) (*TitleOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	title, err := s.services.Titles.Create(ctx, actor, input.Body.input())
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: toTitleResponse(*title)}, nil
}

func (s *Server) handleGetTitle(ctx context.Context, input *TitlePathInput) (*TitleOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	title, err := s.services.Titles.Get(ctx, actor, input.TitleID)
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: toTitleResponse(*title)}, nil
}

func (s *Server) handleUpdateTitle(ctx context.Context, input *UpdateTitleInput) (*TitleOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	title, err := s.services.Titles.Update(ctx, actor, input.TitleID, input.Body.input())
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: toTitleResponse(*title)}, nil
}

func (s *Server) handleDeleteTitle(ctx context.Context, input *TitlePathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Titles.Delete(ctx, actor, input.TitleID)
}
