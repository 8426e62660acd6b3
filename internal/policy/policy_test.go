package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

func newEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := New()
	require.NoError(t, err)
	return e
}

func TestAllowed_Matrix(t *testing.T) {
	e := newEnforcer(t)

	anon := domain.PrivilegeAnonymous
	user := domain.PrivilegeUser
	mod := domain.PrivilegeModerator
	admin := domain.PrivilegeAdmin

	tests := []struct {
		priv domain.Privilege
		res  Resource
		act  Action
		want bool
	}{
		{anon, ResourceCatalog, ActionRead, true},
		{anon, ResourceCatalog, ActionWrite, false},
		{user, ResourceCatalog, ActionWrite, false},
		{mod, ResourceCatalog, ActionWrite, false},
		{admin, ResourceCatalog, ActionWrite, true},

		{anon, ResourceContent, ActionRead, true},
		{anon, ResourceContent, ActionCreate, false},
		{user, ResourceContent, ActionCreate, true},
		{user, ResourceContent, ActionModifyOwn, true},
		{user, ResourceContent, ActionModifyAny, false},
		{mod, ResourceContent, ActionModifyAny, true},
		{admin, ResourceContent, ActionModifyAny, true},

		{anon, ResourceProfile, ActionRead, false},
		{user, ResourceProfile, ActionModifyOwn, true},

		{user, ResourceUsers, ActionManage, false},
		{mod, ResourceUsers, ActionManage, false},
		{admin, ResourceUsers, ActionManage, true},
	}

	for _, tt := range tests {
		t.Run(tt.priv.String()+"/"+string(tt.res)+"/"+string(tt.act), func(t *testing.T) {
			got, err := e.Allowed(tt.priv, tt.res, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize_AnonymousVsAuthenticated(t *testing.T) {
	e := newEnforcer(t)

	err := e.Authorize(nil, ResourceCatalog, ActionWrite)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	err = e.Authorize(&domain.User{ID: 1, Role: domain.RoleUser}, ResourceCatalog, ActionWrite)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	assert.NoError(t, e.Authorize(&domain.User{ID: 1, Role: domain.RoleAdmin}, ResourceCatalog, ActionWrite))
	assert.NoError(t, e.Authorize(&domain.User{ID: 1, Role: domain.RoleUser, IsStaff: true}, ResourceCatalog, ActionWrite))
}

func TestAuthorizeOwned(t *testing.T) {
	e := newEnforcer(t)

	owner := &domain.User{ID: 1, Role: domain.RoleUser}
	other := &domain.User{ID: 2, Role: domain.RoleUser}
	mod := &domain.User{ID: 3, Role: domain.RoleModerator}
	admin := &domain.User{ID: 4, Role: domain.RoleAdmin}

	assert.NoError(t, e.AuthorizeOwned(owner, ResourceContent, 1))
	assert.ErrorIs(t, e.AuthorizeOwned(other, ResourceContent, 1), domainerrors.ErrForbidden)
	assert.NoError(t, e.AuthorizeOwned(mod, ResourceContent, 1))
	assert.NoError(t, e.AuthorizeOwned(admin, ResourceContent, 1))
	assert.ErrorIs(t, e.AuthorizeOwned(nil, ResourceContent, 1), domainerrors.ErrUnauthorized)
}
