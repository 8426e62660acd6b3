package api

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/auth"
	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/ratelimit"
	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/store/sqlite"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// testServer wraps the API server with its collaborators for handler tests.
type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlite.Store
	outbox *mail.Outbox
	tokens *auth.TokenService
}

type testOption func(*Options)

func withAuthLimit(perMinute, burst int) testOption {
	return func(o *Options) {
		o.AuthRateLimiter = ratelimit.PerMinute(perMinute, burst)
	}
}

func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	enforcer, err := policy.New()
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	v := validation.New()
	outbox := &mail.Outbox{}
	mailer := mail.NewMailer(outbox, "noreply@yamdb.local", false, logger)

	services := &Services{
		Auth:    service.NewAuthService(st, tokens, mailer, v, 72*time.Hour, logger),
		Users:   service.NewUserService(st, enforcer, v, logger),
		Catalog: service.NewCatalogService(st, enforcer, v, logger),
		Titles:  service.NewTitleService(st, st, enforcer, v, logger),
		Content: service.NewContentService(st, st, enforcer, v, logger),
	}

	options := Options{AllowedOrigins: []string{"*"}, PageSize: 2, MaxPageSize: 5}
	for _, opt := range opts {
		opt(&options)
	}
	if options.AuthRateLimiter != nil {
		t.Cleanup(options.AuthRateLimiter.Stop)
	}

	s := NewServer(st, services, options, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		outbox: outbox,
		tokens: tokens,
	}
}

// userToken creates an account with the given role and returns an Authorization header for it.
func (ts *testServer) userToken(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), u))

	token, err := ts.tokens.GenerateAccessToken(u)
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

func (ts *testServer) createTitle(t *testing.T, name string, year int) int64 {
	t.Helper()
	title, err := ts.store.CreateTitle(context.Background(), domain.TitleWrite{Name: name, Year: year})
	require.NoError(t, err)
	return title.ID
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

type detailBody struct {
	Detail string `json:"detail"`
}

type fieldBody map[string][]string
