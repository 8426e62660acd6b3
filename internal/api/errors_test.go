package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/store"
)

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"body.score":     "score",
		"body":           domainerrors.NonFieldErrors,
		"query.page":     "page",
		"path.title_id":  "title_id",
		"":               domainerrors.NonFieldErrors,
		"body.genre[0]":  "genre[0]",
		"somewhere.else": "somewhere.else",
	}
	for location, want := range tests {
		assert.Equal(t, want, fieldName(location), location)
	}
}

func TestNewError_Mapping(t *testing.T) {
	RegisterErrorHandler(nil)

	tests := []struct {
		name   string
		err    huma.StatusError
		status int
		body   string
	}{
		{
			name:   "domain not found",
			err:    huma.NewError(http.StatusInternalServerError, "unexpected", domainerrors.NotFound("Not found.")),
			status: http.StatusNotFound,
			body:   `{"detail":"Not found."}`,
		},
		{
			name:   "store conflict",
			err:    huma.NewError(http.StatusInternalServerError, "unexpected", store.ErrAlreadyExists),
			status: http.StatusBadRequest,
			body:   `{"non_field_errors":["resource already exists"]}`,
		},
		{
			name: "huma validation",
			err: huma.NewError(http.StatusUnprocessableEntity, "validation failed",
				&huma.ErrorDetail{Location: "query.page", Message: "expected number >= 1"}),
			status: http.StatusBadRequest,
			body:   `{"page":["expected number >= 1"]}`,
		},
		{
			name:   "plain bad request",
			err:    huma.NewError(http.StatusBadRequest, "unable to parse body"),
			status: http.StatusBadRequest,
			body:   `{"detail":"unable to parse body"}`,
		},
		{
			name:   "unknown failure",
			err:    huma.NewError(http.StatusInternalServerError, "unexpected", errors.New("disk full")),
			status: http.StatusInternalServerError,
			body:   `{"detail":"A server error occurred."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.GetStatus())
			data, err := json.Marshal(tt.err)
			require.NoError(t, err)
			assert.JSONEq(t, tt.body, string(data))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/signup", "Content-Type: application/json", strings.NewReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
