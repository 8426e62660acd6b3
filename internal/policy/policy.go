// Package policy decides what each privilege tier may do, using an embedded Casbin RBAC model.
//
// Subjects are privilege tiers (anonymous, user, moderator, admin) linked by
// grouping rules so every tier inherits the permissions of the tier below it.
// Ownership is resolved by the caller choosing between ActionModifyOwn and
// ActionModifyAny.
package policy

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource is a protected object class.
type Resource string

const (
	ResourceCatalog Resource = "catalog"
	ResourceContent Resource = "content"
	ResourceProfile Resource = "profile"
	ResourceUsers   Resource = "users"
)

// Action is an operation on a resource.
type Action string

const (
	ActionRead      Action = "read"
	ActionWrite     Action = "write"
	ActionCreate    Action = "create"
	ActionModifyOwn Action = "modify_own"
	ActionModifyAny Action = "modify_any"
	ActionManage    Action = "manage"
)

// Enforcer evaluates the embedded policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// New builds an enforcer from the embedded model and policy.
func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allowed reports whether privilege p may perform act on res.
func (e *Enforcer) Allowed(p domain.Privilege, res Resource, act Action) (bool, error) {
	ok, err := e.enforcer.Enforce(p.String(), string(res), string(act))
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return ok, nil
}

// Authorize returns nil when user may perform act on res.
// A denied anonymous caller gets ErrUnauthorized; a denied authenticated caller gets ErrForbidden.
func (e *Enforcer) Authorize(user *domain.User, res Resource, act Action) error {
	priv := domain.EffectivePrivilege(user)
	ok, err := e.Allowed(priv, res, act)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "authorization failed")
	}
	if ok {
		return nil
	}

	metrics.RecordAuthzDenial(string(res), string(act))
	if priv == domain.PrivilegeAnonymous {
		return domainerrors.ErrUnauthorized
	}
	return domainerrors.ErrForbidden
}

// AuthorizeOwned checks a modification of an object owned by ownerID.
func (e *Enforcer) AuthorizeOwned(user *domain.User, res Resource, ownerID int64) error {
	act := ActionModifyAny
	if user != nil && user.ID == ownerID {
		act = ActionModifyOwn
	}
	return e.Authorize(user, res, act)
}
