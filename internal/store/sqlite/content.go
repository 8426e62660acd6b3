package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		r       domain.Review
		pubDate string
	)
	if err := scanner.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.AuthorUsername, &r.Text, &r.Score, &pubDate); err != nil {
		return nil, err
	}
	var err error
	if r.PubDate, err = parseTime(pubDate); err != nil {
		return nil, fmt.Errorf("parse pub_date: %w", err)
	}
	return &r, nil
}

func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var (
		c       domain.Comment
		pubDate string
	)
	if err := scanner.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.AuthorUsername, &c.Text, &pubDate); err != nil {
		return nil, err
	}
	var err error
	if c.PubDate, err = parseTime(pubDate); err != nil {
		return nil, fmt.Errorf("parse pub_date: %w", err)
	}
	return &c, nil
}

// CreateReview inserts r and sets its ID and publication date.
// Returns store.ErrAlreadyExists if the author already reviewed the title.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	if r.PubDate.IsZero() {
		r.PubDate = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (title_id, author_id, text, score, pub_date) VALUES (?, ?, ?, ?, ?)`,
		r.TitleID, r.AuthorID, r.Text, r.Score, formatTime(r.PubDate),
	)
	if err != nil {
		return mapError(err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

// GetReview returns a review that belongs to titleID.
func (s *Store) GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ? AND r.title_id = ?`, reviewID, titleID))
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

// ListReviews returns a title's reviews, oldest first.
func (s *Store) ListReviews(ctx context.Context, titleID int64, p store.PageParams) (store.Page[domain.Review], error) {
	var page store.Page[domain.Review]
	var err error
	if page.Count, err = s.count(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = ?`, titleID); err != nil {
		return page, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		reviewSelect+` WHERE r.title_id = ? ORDER BY r.pub_date, r.id LIMIT ? OFFSET ?`,
		titleID, p.PageSize, p.Offset())
	if err != nil {
		return page, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	page.Items = []domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *r)
	}
	return page, rows.Err()
}

// UpdateReview writes text and score. Author, title and pub_date never change.
func (s *Store) UpdateReview(ctx context.Context, r *domain.Review) error {
	res, err := s.db.ExecContext(ctx, `UPDATE reviews SET text = ?, score = ? WHERE id = ?`, r.Text, r.Score, r.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// DeleteReview removes a review and its comments.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// CreateComment inserts c and sets its ID and publication date.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.PubDate.IsZero() {
		c.PubDate = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (review_id, author_id, text, pub_date) VALUES (?, ?, ?, ?)`,
		c.ReviewID, c.AuthorID, c.Text, formatTime(c.PubDate),
	)
	if err != nil {
		return mapError(err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// GetComment returns a comment that belongs to reviewID.
func (s *Store) GetComment(ctx context.Context, reviewID, commentID int64) (*domain.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ? AND c.review_id = ?`, commentID, reviewID))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListComments returns a review's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, reviewID int64, p store.PageParams) (store.Page[domain.Comment], error) {
	var page store.Page[domain.Comment]
	var err error
	if page.Count, err = s.count(ctx, `SELECT COUNT(*) FROM comments WHERE review_id = ?`, reviewID); err != nil {
		return page, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		commentSelect+` WHERE c.review_id = ? ORDER BY c.pub_date, c.id LIMIT ? OFFSET ?`,
		reviewID, p.PageSize, p.Offset())
	if err != nil {
		return page, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	page.Items = []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *c)
	}
	return page, rows.Err()
}

// UpdateComment writes the comment text.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, c.Text, c.ID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}
