package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// TitleInput is a title write. Category and genres are referenced by slug.
// For updates nil fields are left unchanged; for creation every field except
// description is required.
type TitleInput struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

type titleCreateFields struct {
	Name     *string  `json:"name" validate:"required,min=1,max=256"`
	Year     *int     `json:"year" validate:"required,notfuture"`
	Category *string  `json:"category" validate:"required"`
	Genre    []string `json:"genre" validate:"required"`
}

type titleFields struct {
	Name string `json:"name" validate:"required,min=1,max=256"`
	Year int    `json:"year" validate:"notfuture"`
}

// TitleService manages titles.
type TitleService struct {
	titles    store.Titles
	taxonomy  store.Taxonomy
	policy    *policy.Enforcer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTitleService creates a title service.
func NewTitleService(titles store.Titles, taxonomy store.Taxonomy, p *policy.Enforcer, v *validation.Validator, logger *slog.Logger) *TitleService {
	return &TitleService{titles: titles, taxonomy: taxonomy, policy: p, validator: v, logger: logger}
}

// List returns titles matching f. Unknown orderings fall back to name.
func (s *TitleService) List(ctx context.Context, actor *domain.User, f domain.TitleFilter, p store.PageParams) (store.Page[domain.Title], error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionRead); err != nil {
		return store.Page[domain.Title]{}, err
	}
	if !slices.Contains(domain.TitleOrderings, f.Ordering) {
		f.Ordering = "name"
	}
	return s.titles.ListTitles(ctx, f, p)
}

// Get returns a title with its category, genres and rating.
func (s *TitleService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Title, error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionRead); err != nil {
		return nil, err
	}
	t, err := s.titles.GetTitle(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Create adds a title.
func (s *TitleService) Create(ctx context.Context, actor *domain.User, in TitleInput) (*domain.Title, error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return nil, err
	}
	fields := domainerrors.FieldErrors{}
	err := s.validator.Validate(titleCreateFields{
		Name:     in.Name,
		Year:     in.Year,
		Category: in.Category,
		Genre:    in.Genre,
	})
	if err := collectFields(fields, err); err != nil {
		return nil, err
	}

	var w domain.TitleWrite
	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Year != nil {
		w.Year = *in.Year
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if err := collectFields(fields, s.resolveReferences(ctx, in, &w)); err != nil {
		return nil, err
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	t, err := s.titles.CreateTitle(ctx, w)
	if err != nil {
		return nil, titleWriteError(err)
	}
	logFor(ctx, s.logger).Info("title created", "title_id", t.ID, "name", t.Name, "by", actor.Username)
	return t, nil
}

// Update applies a partial update. A supplied genre list replaces the current one.
func (s *TitleService) Update(ctx context.Context, actor *domain.User, id int64, in TitleInput) (*domain.Title, error) {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return nil, err
	}
	current, err := s.titles.GetTitle(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	w := domain.TitleWrite{
		Name:        current.Name,
		Year:        current.Year,
		Description: current.Description,
	}
	if current.Category != nil {
		w.CategoryID = &current.Category.ID
	}
	for _, g := range current.Genres {
		w.GenreIDs = append(w.GenreIDs, g.ID)
	}

	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Year != nil {
		w.Year = *in.Year
	}
	if in.Description != nil {
		w.Description = *in.Description
	}

	fields := domainerrors.FieldErrors{}
	if err := collectFields(fields, s.validator.Validate(titleFields{Name: w.Name, Year: w.Year})); err != nil {
		return nil, err
	}
	if err := collectFields(fields, s.resolveReferences(ctx, in, &w)); err != nil {
		return nil, err
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	t, err := s.titles.UpdateTitle(ctx, id, w)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(err)
		}
		return nil, titleWriteError(err)
	}
	logFor(ctx, s.logger).Info("title updated", "title_id", t.ID, "by", actor.Username)
	return t, nil
}

// Delete removes a title with its reviews and their comments.
func (s *TitleService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if err := s.policy.Authorize(actor, policy.ResourceCatalog, policy.ActionWrite); err != nil {
		return err
	}
	if err := s.titles.DeleteTitle(ctx, id); err != nil {
		return notFound(err)
	}
	logFor(ctx, s.logger).Info("title deleted", "title_id", id, "by", actor.Username)
	return nil
}

// resolveReferences turns the category and genre slugs present in in into ids on w.
func (s *TitleService) resolveReferences(ctx context.Context, in TitleInput, w *domain.TitleWrite) error {
	fields := domainerrors.FieldErrors{}

	if in.Category != nil {
		c, err := lookup(s.taxonomy.GetCategoryBySlug(ctx, *in.Category))
		switch {
		case err != nil:
			return err
		case c == nil:
			fields.Add("category", missingSlug(*in.Category))
		default:
			w.CategoryID = &c.ID
		}
	}

	if in.Genre != nil {
		ids := make([]int64, 0, len(in.Genre))
		for _, slug := range in.Genre {
			g, err := lookup(s.taxonomy.GetGenreBySlug(ctx, slug))
			if err != nil {
				return err
			}
			if g == nil {
				fields.Add("genre", missingSlug(slug))
				continue
			}
			if !slices.Contains(ids, g.ID) {
				ids = append(ids, g.ID)
			}
		}
		w.GenreIDs = ids
	}

	return fields.Err()
}

// collectFields merges the field errors carried by err into fields and
// returns any other error unchanged.
func collectFields(fields domainerrors.FieldErrors, err error) error {
	if err == nil {
		return nil
	}
	verr := domainerrors.FieldsOf(err)
	if verr == nil {
		return err
	}
	fields.Merge(verr)
	return nil
}

func missingSlug(slug string) string {
	return fmt.Sprintf("Object with slug=%s does not exist.", slug)
}

// titleWriteError maps a reference deleted between resolution and write.
func titleWriteError(err error) error {
	if errors.Is(err, store.ErrInvalidReference) {
		return domainerrors.Validation("A referenced category or genre no longer exists.")
	}
	return fmt.Errorf("save title: %w", err)
}
