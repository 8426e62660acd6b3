package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/auth"
	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/store/sqlite"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// testEnv wires every service against a temporary SQLite store.
type testEnv struct {
	store   *sqlite.Store
	outbox  *mail.Outbox
	tokens  *auth.TokenService
	auth    *AuthService
	users   *UserService
	catalog *CatalogService
	titles  *TitleService
	content *ContentService
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		store:   st,
		outbox:  outbox,
		tokens:  tokens,
		auth:    NewAuthService(st, tokens, mailer, v, 72*time.Hour, logger),
		users:   NewUserService(st, enforcer, v, logger),
		catalog: NewCatalogService(st, enforcer, v, logger),
		titles:  NewTitleService(st, st, enforcer, v, logger),
		content: NewContentService(st, st, enforcer, v, logger),
	}
}

func (e *testEnv) user(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) superuser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: domain.RoleUser, IsSuperuser: true, IsStaff: true}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) title(t *testing.T, name string) *domain.Title {
	t.Helper()
	title, err := e.store.CreateTitle(context.Background(), domain.TitleWrite{Name: name, Year: 2000})
	require.NoError(t, err)
	return title
}

func page() store.PageParams {
	return store.PageParams{Page: 1, PageSize: 10}
}

func ptr[T any](v T) *T { return &v }

// requireFields asserts err is a 400 carrying a message for each named field.
func requireFields(t *testing.T, err error, fields ...string) domainerrors.FieldErrors {
	t.Helper()
	require.Error(t, err)
	got := domainerrors.FieldsOf(err)
	require.NotNil(t, got, "expected field errors, got %v", err)
	for _, f := range fields {
		require.Contains(t, got, f)
	}
	return got
}
