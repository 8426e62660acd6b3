package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// titleSelect joins the category and derives the rating. CAST truncates the
// average toward zero; AVG over no rows is NULL.
const titleSelect = `SELECT t.id, t.name, t.year, t.description,
	c.id, c.name, c.slug,
	(SELECT CAST(AVG(r.score) AS INTEGER) FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

var titleOrderings = map[string]string{
	"name":  "t.name ASC, t.id ASC",
	"-name": "t.name DESC, t.id DESC",
	"year":  "t.year ASC, t.id ASC",
	"-year": "t.year DESC, t.id DESC",
}

func scanTitle(scanner interface{ Scan(dest ...any) error }) (*domain.Title, error) {
	var (
		t            domain.Title
		description  sql.NullString
		categoryID   sql.NullInt64
		categoryName sql.NullString
		categorySlug sql.NullString
		rating       sql.NullInt64
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&t.Year,
		&description,
		&categoryID,
		&categoryName,
		&categorySlug,
		&rating,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	if categoryID.Valid {
		t.Category = &domain.Category{ID: categoryID.Int64, Name: categoryName.String, Slug: categorySlug.String}
	}
	if rating.Valid {
		v := int(rating.Int64)
		t.Rating = &v
	}
	t.Genres = []domain.Genre{}
	return &t, nil
}

// CreateTitle inserts a title and its genre links in one transaction.
func (s *Store) CreateTitle(ctx context.Context, w domain.TitleWrite) (*domain.Title, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO titles (name, year, description, category_id) VALUES (?, ?, ?, ?)`,
		w.Name, w.Year, nullDescription(w.Description), nullableInt64(w.CategoryID),
	)
	if err != nil {
		return nil, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := replaceTitleGenres(ctx, tx, id, w.GenreIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetTitle(ctx, id)
}

// GetTitle returns a title with category, genres and rating.
func (s *Store) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	t, err := scanTitle(s.db.QueryRowContext(ctx, titleSelect+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.attachGenres(ctx, []*domain.Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTitles returns a filtered, ordered page of titles.
func (s *Store) ListTitles(ctx context.Context, f domain.TitleFilter, p store.PageParams) (store.Page[domain.Title], error) {
	var (
		conds []string
		args  []any
	)
	if f.CategorySlug != "" {
		conds = append(conds, `t.category_id IN (SELECT id FROM categories WHERE slug = ?)`)
		args = append(args, f.CategorySlug)
	}
	if f.GenreSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = ?)`)
		args = append(args, f.GenreSlug)
	}
	if f.Name != "" {
		conds = append(conds, foldedLike("t.name"))
		args = append(args, likePattern(f.Name))
	}
	if f.Year != nil {
		conds = append(conds, `t.year = ?`)
		args = append(args, *f.Year)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	order, ok := titleOrderings[f.Ordering]
	if !ok {
		order = titleOrderings["name"]
	}

	var page store.Page[domain.Title]
	var err error
	if page.Count, err = s.count(ctx, `SELECT COUNT(*) FROM titles t`+where, args...); err != nil {
		return page, fmt.Errorf("count titles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		titleSelect+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return page, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []*domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return page, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}
	if err := s.attachGenres(ctx, titles); err != nil {
		return page, err
	}

	page.Items = make([]domain.Title, 0, len(titles))
	for _, t := range titles {
		page.Items = append(page.Items, *t)
	}
	return page, nil
}

// UpdateTitle overwrites a title's attributes and genre set in one transaction.
func (s *Store) UpdateTitle(ctx context.Context, id int64, w domain.TitleWrite) (*domain.Title, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE titles SET name = ?, year = ?, description = ?, category_id = ? WHERE id = ?`,
		w.Name, w.Year, nullDescription(w.Description), nullableInt64(w.CategoryID), id,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	if err := replaceTitleGenres(ctx, tx, id, w.GenreIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetTitle(ctx, id)
}

// DeleteTitle removes a title; its reviews, comments and genre links cascade.
func (s *Store) DeleteTitle(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func replaceTitleGenres(ctx context.Context, tx *sql.Tx, titleID int64, genreIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = ?`, titleID); err != nil {
		return mapError(err)
	}
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			titleID, gid,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

// attachGenres loads genres for all titles with one query.
func (s *Store) attachGenres(ctx context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Title, len(titles))
	placeholders := make([]string, 0, len(titles))
	args := make([]any, 0, len(titles))
	for _, t := range titles {
		byID[t.ID] = t
		placeholders = append(placeholders, "?")
		args = append(args, t.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY g.name, g.id`, args...)
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID int64
			g       domain.Genre
		)
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return err
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	return rows.Err()
}

func nullDescription(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
