package api

import (
	"context"
	"strings"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

// actor resolves the Authorization header to the calling user.
// A missing header is an anonymous caller (nil, nil); a bad token is rejected
// even on endpoints anonymous callers may use.
func (s *Server) actor(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, nil
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, domainerrors.Unauthorized("Invalid authorization header format.")
	}

	return s.services.Auth.Authenticate(ctx, strings.TrimSpace(token))
}
