package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	// chi matches the static /users/me segment before /users/{username}.
	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get own profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update own profile",
		Description: "Partially updates the caller's account. The role cannot be changed here and is ignored.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Admin only. Supports search by username.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "createUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users",
		Summary:     "Create user",
		Description: "Admin only",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}",
		Summary:     "Get user",
		Description: "Admin only",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{username}",
		Summary:     "Update user",
		Description: "Admin only",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{username}",
		Summary:       "Delete user",
		Description:   "Admin only. Removes the user's reviews and comments too.",
		Tags:          []string{"Users"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)
}

// === DTOs ===

// UserResponse contains account data in API responses.
type UserResponse struct {
	Username  string `json:"username" doc:"Username"`
	Email     string `json:"email" doc:"Email address"`
	FirstName string `json:"first_name" doc:"First name"`
	LastName  string `json:"last_name" doc:"Last name"`
	Bio       string `json:"bio" doc:"Biography"`
	Role      string `json:"role" enum:"user,moderator,admin" doc:"Role"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Authorization string `header:"Authorization"`
	Search        string `query:"search" doc:"Username substring"`
	PageQuery
}

// ListUsersOutput wraps a page of users for Huma.
type ListUsersOutput struct {
	Body Page[UserResponse]
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	_ struct{} `additionalProperties:"true"`

	Username  string `json:"username,omitempty" doc:"Username"`
	Email     string `json:"email,omitempty" doc:"Email address"`
	FirstName string `json:"first_name,omitempty" doc:"First name"`
	LastName  string `json:"last_name,omitempty" doc:"Last name"`
	Bio       string `json:"bio,omitempty" doc:"Biography"`
	Role      string `json:"role,omitempty" doc:"Role, user when omitted"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateUserRequest
}

// UpdateUserRequest is the request body for a partial account update.
type UpdateUserRequest struct {
	_ struct{} `additionalProperties:"true"`

	Username  *string `json:"username,omitempty" doc:"Username"`
	Email     *string `json:"email,omitempty" doc:"Email address"`
	FirstName *string `json:"first_name,omitempty" doc:"First name"`
	LastName  *string `json:"last_name,omitempty" doc:"Last name"`
	Bio       *string `json:"bio,omitempty" doc:"Biography"`
	Role      *string `json:"role,omitempty" doc:"Role"`
}

func (r UpdateUserRequest) patch() service.UserPatch {
	p := service.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

// UserPathInput identifies a user by username.
type UserPathInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Username"`
}

// UpdateUserInput wraps an admin account update for Huma.
type UpdateUserInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Username"`
	Body          UpdateUserRequest
}

// MeInput authenticates a self-profile read.
type MeInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateMeInput wraps a self-profile update for Huma.
type UpdateMeInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateUserRequest
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	p := s.pageParams(input.PageQuery)
	users, err := s.services.Users.List(ctx, actor, input.Search, p)
	if err != nil {
		return nil, err
	}

	page, err := newPage(input.PageQuery, p, users, toUserResponse)
	if err != nil {
		return nil, err
	}
	return &ListUsersOutput{Body: page}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.Create(ctx, actor, service.UserInput{
		Username:  input.Body.Username,
		Email:     input.Body.Email,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Bio:       input.Body.Bio,
		Role:      domain.Role(input.Body.Role),
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(*user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserPathInput) (*UserOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.Get(ctx, actor, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(*user)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.Update(ctx, actor, input.Username, input.Body.patch())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(*user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserPathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Users.Delete(ctx, actor, input.Username)
}

func (s *Server) handleGetMe(ctx context.Context, input *MeInput) (*UserOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(*user)}, nil
}

func (s *Server) handleUpdateMe(ctx context.Context, input *UpdateMeInput) (*UserOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.UpdateMe(ctx, actor, input.Body.patch())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(*user)}, nil
}
