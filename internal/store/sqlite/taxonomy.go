package sqlite

import (
	"context"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// Categories and genres share one shape; these helpers take the table name
// from a fixed set of constants, never from input.
const (
	tableCategories = "categories"
	tableGenres     = "genres"
)

type slugRow struct {
	ID   int64
	Name string
	Slug string
}

func (s *Store) insertSlugRow(ctx context.Context, table, name, slug string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO `+table+` (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return 0, mapError(err)
	}
	return res.LastInsertId()
}

func (s *Store) getSlugRow(ctx context.Context, table, slug string) (slugRow, error) {
	var r slugRow
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM `+table+` WHERE slug = ?`, slug).
		Scan(&r.ID, &r.Name, &r.Slug)
	return r, mapError(err)
}

func (s *Store) listSlugRows(ctx context.Context, table, search string, p store.PageParams) (store.Page[slugRow], error) {
	where := ""
	var args []any
	if search != "" {
		where = " WHERE " + foldedLike("name")
		args = append(args, likePattern(search))
	}

	var page store.Page[slugRow]
	var err error
	if page.Count, err = s.count(ctx, `SELECT COUNT(*) FROM `+table+where, args...); err != nil {
		return page, fmt.Errorf("count %s: %w", table, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug FROM `+table+where+` ORDER BY name, id LIMIT ? OFFSET ?`,
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return page, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	page.Items = []slugRow{}
	for rows.Next() {
		var r slugRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug); err != nil {
			return page, err
		}
		page.Items = append(page.Items, r)
	}
	return page, rows.Err()
}

func (s *Store) deleteSlugRow(ctx context.Context, table, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE slug = ?`, slug)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// CreateCategory inserts c and sets its ID.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	id, err := s.insertSlugRow(ctx, tableCategories, c.Name, c.Slug)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetCategoryBySlug returns the category with the given slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	r, err := s.getSlugRow(ctx, tableCategories, slug)
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: r.ID, Name: r.Name, Slug: r.Slug}, nil
}

// ListCategories returns categories whose name contains search, ordered by name.
func (s *Store) ListCategories(ctx context.Context, search string, p store.PageParams) (store.Page[domain.Category], error) {
	page, err := s.listSlugRows(ctx, tableCategories, search, p)
	if err != nil {
		return store.Page[domain.Category]{}, err
	}
	return store.MapPage(page, func(r slugRow) domain.Category {
		return domain.Category{ID: r.ID, Name: r.Name, Slug: r.Slug}
	}), nil
}

// DeleteCategory removes a category; titles that used it keep existing with no category.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	return s.deleteSlugRow(ctx, tableCategories, slug)
}

// CreateGenre inserts g and sets its ID.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	id, err := s.insertSlugRow(ctx, tableGenres, g.Name, g.Slug)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// GetGenreBySlug returns the genre with the given slug.
func (s *Store) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	r, err := s.getSlugRow(ctx, tableGenres, slug)
	if err != nil {
		return nil, err
	}
	return &domain.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug}, nil
}

// ListGenres returns genres whose name contains search, ordered by name.
func (s *Store) ListGenres(ctx context.Context, search string, p store.PageParams) (store.Page[domain.Genre], error) {
	page, err := s.listSlugRows(ctx, tableGenres, search, p)
	if err != nil {
		return store.Page[domain.Genre]{}, err
	}
	return store.MapPage(page, func(r slugRow) domain.Genre {
		return domain.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug}
	}), nil
}

// DeleteGenre removes a genre and its title links; the titles remain.
func (s *Store) DeleteGenre(ctx context.Context, slug string) error {
	return s.deleteSlugRow(ctx, tableGenres, slug)
}
