package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Sign up",
		Description: "Registers an account, or re-sends the code for an existing matching account. The confirmation code is emailed.",
		Tags:        []string{"Auth"},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "obtainToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Obtain token",
		Description: "Exchanges a username and confirmation code for a bearer token",
		Tags:        []string{"Auth"},
	}, s.handleToken)
}

// SignupRequest is the request body for signing up.
type SignupRequest struct {
	_ struct{} `additionalProperties:"true"`

	Username string `json:"username,omitempty" doc:"Username"`
	Email    string `json:"email,omitempty" doc:"Email address the code is sent to"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// SignupResponse echoes the registered pair.
type SignupResponse struct {
	Username string `json:"username" doc:"Username"`
	Email    string `json:"email" doc:"Email address"`
}

// SignupOutput wraps the signup response for Huma.
type SignupOutput struct {
	Body SignupResponse
}

// TokenRequest is the request body for obtaining a token.
type TokenRequest struct {
	_ struct{} `additionalProperties:"true"`

	Username         string `json:"username,omitempty" doc:"Username"`
	ConfirmationCode string `json:"confirmation_code,omitempty" doc:"Code from the signup email"`
}

// TokenInput wraps the token request for Huma.
type TokenInput struct {
	Body TokenRequest
}

// TokenResponse carries the bearer token.
type TokenResponse struct {
	Token string `json:"token" doc:"Bearer access token"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
	user, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &SignupOutput{Body: SignupResponse{Username: user.Username, Email: user.Email}}, nil
}

func (s *Server) handleToken(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	token, err := s.services.Auth.Token(ctx, service.TokenRequest{
		Username:         input.Body.Username,
		ConfirmationCode: input.Body.ConfirmationCode,
	})
	if err != nil {
		return nil, err
	}
	return &TokenOutput{Body: TokenResponse{Token: token}}, nil
}
