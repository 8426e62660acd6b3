package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// UserInput is an account as written by an administrator.
type UserInput struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      domain.Role `json:"role"`
}

// UserPatch is a partial account update. Nil fields are left unchanged.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *domain.Role
}

// accountFields is the validated shape of an account after a write is applied.
type accountFields struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Role      string `json:"role" validate:"required,oneof=user moderator admin"`
}

// UserService manages accounts on behalf of administrators and account owners.
type UserService struct {
	store     store.Users
	policy    *policy.Enforcer
	validator *validation.Validator
	now       func() time.Time
	logger    *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(st store.Users, p *policy.Enforcer, v *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{store: st, policy: p, validator: v, now: time.Now, logger: logger}
}

// List returns accounts whose username contains search.
func (s *UserService) List(ctx context.Context, actor *domain.User, search string, p store.PageParams) (store.Page[domain.User], error) {
	if err := s.policy.Authorize(actor, policy.ResourceUsers, policy.ActionManage); err != nil {
		return store.Page[domain.User]{}, err
	}
	return s.store.ListUsers(ctx, search, p)
}

// Get returns the account with the given username.
func (s *UserService) Get(ctx context.Context, actor *domain.User, username string) (*domain.User, error) {
	if err := s.policy.Authorize(actor, policy.ResourceUsers, policy.ActionManage); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// Create adds an account. No confirmation code is issued; the account owner
// requests one through signup.
func (s *UserService) Create(ctx context.Context, actor *domain.User, in UserInput) (*domain.User, error) {
	if err := s.policy.Authorize(actor, policy.ResourceUsers, policy.ActionManage); err != nil {
		return nil, err
	}

	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	user := &domain.User{
		Username:   validation.NormalizeUsername(in.Username),
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Bio:        in.Bio,
		Role:       in.Role,
		DateJoined: s.now(),
	}
	if err := s.validateAccount(ctx, user, nil); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, s.writeError(err)
	}

	logFor(ctx, s.logger).Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role, "by", actor.Username)
	return user, nil
}

// CreateSuperuser adds an account with the superuser and staff flags set.
// It backs the maintenance CLI and has no API route.
func (s *UserService) CreateSuperuser(ctx context.Context, username, email string) (*domain.User, error) {
	user := &domain.User{
		Username:    validation.NormalizeUsername(username),
		Email:       email,
		Role:        domain.RoleUser,
		IsSuperuser: true,
		IsStaff:     true,
		DateJoined:  s.now(),
	}
	if err := s.validateAccount(ctx, user, nil); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, s.writeError(err)
	}

	logFor(ctx, s.logger).Info("superuser created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Update applies a partial update to the account with the given username.
func (s *UserService) Update(ctx context.Context, actor *domain.User, username string, patch UserPatch) (*domain.User, error) {
	if err := s.policy.Authorize(actor, policy.ResourceUsers, policy.ActionManage); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return s.apply(ctx, user, patch)
}

// Delete removes an account together with its reviews and comments.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, username string) error {
	if err := s.policy.Authorize(actor, policy.ResourceUsers, policy.ActionManage); err != nil {
		return err
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return notFound(err)
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return notFound(err)
	}

	logFor(ctx, s.logger).Info("user deleted", "user_id", user.ID, "username", user.Username, "by", actor.Username)
	return nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := s.policy.Authorize(actor, policy.ResourceProfile, policy.ActionRead); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// UpdateMe applies a partial update to the caller's own account.
// The role cannot be changed this way and is silently kept.
func (s *UserService) UpdateMe(ctx context.Context, actor *domain.User, patch UserPatch) (*domain.User, error) {
	if err := s.policy.Authorize(actor, policy.ResourceProfile, policy.ActionModifyOwn); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err)
	}
	patch.Role = nil
	return s.apply(ctx, user, patch)
}

func (s *UserService) apply(ctx context.Context, user *domain.User, patch UserPatch) (*domain.User, error) {
	current := *user

	if patch.Username != nil {
		user.Username = validation.NormalizeUsername(*patch.Username)
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if err := s.validateAccount(ctx, user, &current); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, s.writeError(err)
	}

	logFor(ctx, s.logger).Info("user updated", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// validateAccount checks field rules and uniqueness. current is the stored
// record for updates and nil for creation.
func (s *UserService) validateAccount(ctx context.Context, user, current *domain.User) error {
	fields := domainerrors.FieldErrors{}
	if err := s.validator.Validate(accountFields{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}); err != nil {
		verr := domainerrors.FieldsOf(err)
		if verr == nil {
			return err
		}
		fields.Merge(verr)
	}

	if _, bad := fields["username"]; !bad && (current == nil || current.Username != user.Username) {
		existing, err := lookup(s.store.GetUserByUsername(ctx, user.Username))
		if err != nil {
			return err
		}
		if existing != nil {
			fields.Add("username", msgUsernameTaken)
		}
	}
	if _, bad := fields["email"]; !bad && (current == nil || current.Email != user.Email) {
		existing, err := lookup(s.store.GetUserByEmail(ctx, user.Email))
		if err != nil {
			return err
		}
		if existing != nil {
			fields.Add("email", msgEmailTaken)
		}
	}
	return fields.Err()
}

func (s *UserService) writeError(err error) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.Conflict(domainerrors.NonFieldErrors, "a user with this username or email already exists")
	}
	return fmt.Errorf("save user: %w", err)
}
