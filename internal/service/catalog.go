package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// SlugInput is a category or genre as written by an administrator.
type SlugInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// CatalogService manages categories and genres.
type CatalogService struct {
	store     store.Taxonomy
	policy    *policy.Enforcer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(st store.Taxonomy, p *policy.Enforcer, v *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: st, policy: p, validator: v, logger: logger}
}

// ListCategories returns categories whose name contains search, by name.
func (s *CatalogService) ListCategories(ctx context.Context, actor *domain.User, search string, p store.PageParams) (store.Page[domain.Category], error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionRead); err != nil {
		return store.Page[domain.Category]{}, err
	}
	return s.store.ListCategories(ctx, search, p)
}

// CreateCategory adds a category.
func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, in SlugInput) (*domain.Category, error) {
	if err := s.checkWrite(actor, in); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: in.Name, Slug: in.Slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, slugWriteError("category", err)
	}
	logFor(ctx, s.logger).Info("category created", "slug", c.Slug, "by", actor.Username)
	return c, nil
}

// DeleteCategory removes a category. Titles in it keep existing without one.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *domain.User, slug string) error {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, slug); err != nil {
		return notFound(err)
	}
	logFor(ctx, s.logger).Info("category deleted", "slug", slug, "by", actor.Username)
	return nil
}

// ListGenres returns genres whose name contains search, by name.
func (s *CatalogService) ListGenres(ctx context.Context, actor *domain.User, search string, p store.PageParams) (store.Page[domain.Genre], error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionRead); err != nil {
		return store.Page[domain.Genre]{}, err
	}
	return s.store.ListGenres(ctx, search, p)
}

// CreateGenre adds a genre.
func (s *CatalogService) CreateGenre(ctx context.Context, actor *domain.User, in SlugInput) (*domain.Genre, error) {
	if err := s.checkWrite(actor, in); err != nil {
		return nil, err
	}
	g := &domain.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.store.CreateGenre(ctx, g); err != nil {
		return nil, slugWriteError("genre", err)
	}
	logFor(ctx, s.logger).Info("genre created", "slug", g.Slug, "by", actor.Username)
	return g, nil
}

// DeleteGenre removes a genre and its title links; the titles stay.
func (s *CatalogService) DeleteGenre(ctx context.Context, actor *domain.User, slug string) error {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return err
	}
	if err := s.store.DeleteGenre(ctx, slug); err != nil {
		return notFound(err)
	}
	logFor(ctx, s.logger).Info("genre deleted", "slug", slug, "by", actor.Username)
	return nil
}

func (s *CatalogService) checkWrite(actor *domain.User, in SlugInput) error {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return err
	}
	return s.validator.Validate(in)
}

// slugWriteError reports a duplicate slug the way a uniqueness validator would.
func slugWriteError(kind string, err error) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.Conflict("slug", kind+" with this slug already exists.")
	}
	return fmt.Errorf("save %s: %w", kind, err)
}
