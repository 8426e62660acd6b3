package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
)

func seedCatalog(t *testing.T, ts *testServer, admin string) {
	t.Helper()
	for _, req := range []struct {
		path string
		body map[string]any
	}{
		{"/api/v1/categories", map[string]any{"name": "Films", "slug": "films"}},
		{"/api/v1/genres", map[string]any{"name": "Drama", "slug": "drama"}},
		{"/api/v1/genres", map[string]any{"name": "Sci-Fi", "slug": "sci-fi"}},
	} {
		resp := ts.api.Post(req.path, admin, req.body)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}
}

func TestTitles_CreateAndRead(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.userToken(t, "boss", domain.RoleAdmin)
	seedCatalog(t, ts, admin)

	resp := ts.api.Post("/api/v1/titles", admin, map[string]any{
		"name":     "Solaris",
		"year":     1972,
		"category": "films",
		"genre":    []string{"drama", "sci-fi"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decodeBody[TitleResponse](t, resp)
	assert.Equal(t, "Solaris", created.Name)
	assert.Nil(t, created.Rating)
	require.NotNil(t, created.Category)
	assert.Equal(t, "films", created.Category.Slug)
	assert.Len(t, created.Genre, 2)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/titles/%d", created.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	raw := decodeBody[map[string]any](t, resp)
	assert.Contains(t, raw, "rating")
	assert.Nil(t, raw["rating"])
	assert.Contains(t, raw, "description")
	assert.Nil(t, raw["description"])

	resp = ts.api.Get("/api/v1/titles?genre=sci-fi&category=films")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeBody[Page[TitleResponse]](t, resp).Count)

	resp = ts.api.Get("/api/v1/titles?year=1999")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decodeBody[Page[TitleResponse]](t, resp).Count)
}

func TestTitles_CreateValidation(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.userToken(t, "boss", domain.RoleAdmin)
	seedCatalog(t, ts, admin)

	resp := ts.api.Post("/api/v1/titles", admin, map[string]any{
		"name":     "Tomorrow",
		"year":     time.Now().Year() + 1,
		"category": "nope",
		"genre":    []string{},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	fields := decodeBody[fieldBody](t, resp)
	assert.Contains(t, fields, "year")
	assert.Equal(t, []string{"Object with slug=nope does not exist."}, fields["category"])
}

func TestTitles_PartialUpdateAndCategoryDelete(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.userToken(t, "boss", domain.RoleAdmin)
	seedCatalog(t, ts, admin)

	resp := ts.api.Post("/api/v1/titles", admin, map[string]any{
		"name":     "Stalker",
		"year":     1979,
		"category": "films",
		"genre":    []string{"drama"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	id := decodeBody[TitleResponse](t, resp).ID
	path := fmt.Sprintf("/api/v1/titles/%d", id)

	resp = ts.api.Patch(path, admin, map[string]any{"genre": []string{"sci-fi"}, "description": "The Zone"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeBody[TitleResponse](t, resp)
	assert.Equal(t, "Stalker", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "The Zone", *updated.Description)
	require.Len(t, updated.Genre, 1)
	assert.Equal(t, "sci-fi", updated.Genre[0].Slug)

	resp = ts.api.Delete("/api/v1/categories/films", admin)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(path)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decodeBody[TitleResponse](t, resp).Category)

	resp = ts.api.Delete("/api/v1/genres/sci-fi", admin)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(path)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeBody[TitleResponse](t, resp).Genre)

	resp = ts.api.Delete(path, admin)
	require.Equal(t, http.StatusNoContent, resp.Code)
	resp = ts.api.Get(path)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTitles_Pagination(t *testing.T) {
	ts := setupTestServer(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		ts.createTitle(t, name, 2000)
	}

	resp := ts.api.Get("/api/v1/titles?year=2000")
	require.Equal(t, http.StatusOK, resp.Code)
	first := decodeBody[Page[TitleResponse]](t, resp)
	assert.Equal(t, 5, first.Count)
	require.Len(t, first.Results, 2)
	assert.Equal(t, "A", first.Results[0].Name)
	require.NotNil(t, first.Next)
	assert.Equal(t, "/api/v1/titles?page=2&year=2000", *first.Next)
	assert.Nil(t, first.Previous)

	resp = ts.api.Get("/api/v1/titles?page=2&year=2000")
	require.Equal(t, http.StatusOK, resp.Code)
	second := decodeBody[Page[TitleResponse]](t, resp)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "/api/v1/titles?year=2000", *second.Previous)

	// page_size is capped at 5.
	resp = ts.api.Get("/api/v1/titles?page_size=50")
	require.Equal(t, http.StatusOK, resp.Code)
	all := decodeBody[Page[TitleResponse]](t, resp)
	assert.Len(t, all.Results, 5)
	assert.Nil(t, all.Next)

	resp = ts.api.Get("/api/v1/titles?page=3&page_size=5")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Invalid page.", decodeBody[detailBody](t, resp).Detail)

	resp = ts.api.Get("/api/v1/titles?page=0")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTitles_RatingFromReviews(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createTitle(t, "Solaris", 1972)
	path := fmt.Sprintf("/api/v1/titles/%d", id)

	for i, score := range []int{2, 4} {
		token := ts.userToken(t, fmt.Sprintf("reader%d", i), domain.RoleUser)
		resp := ts.api.Post(path+"/reviews", token, map[string]any{"text": "ok", "score": score})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get(path)
	require.Equal(t, http.StatusOK, resp.Code)
	rating := decodeBody[TitleResponse](t, resp).Rating
	require.NotNil(t, rating)
	assert.Equal(t, 3, *rating)
}
