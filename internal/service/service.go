// Package service implements the YaMDb operations: each method resolves path
// parents, authorizes the caller, validates input and persists the result.
package service

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/store"
)

// Messages shared across services.
const (
	msgNotFound        = "Not found."
	msgUsernameTaken   = "a user with this username already exists"
	msgEmailTaken      = "a user with this email already exists"
	msgAlreadyReviewed = "You have already reviewed this title."
)

// notFound converts a store miss into a 404 and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msgNotFound).WithCause(err)
	}
	return err
}

// lookup returns (nil, nil) when the row does not exist.
func lookup[T any](v *T, err error) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// logFor prefers the request-scoped logger so entries carry the request id.
func logFor(ctx context.Context, base *slog.Logger) *slog.Logger {
	return logger.FromContext(ctx, base)
}
