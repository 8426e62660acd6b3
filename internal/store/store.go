// Package store defines the persistence contract for accounts, the catalog and user content.
package store

import (
	"context"

	"github.com/yamdb/yamdb-server/internal/domain"
)

// Users persists accounts and their pending confirmation codes.
type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, search string, p PageParams) (Page[domain.User], error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id int64) error

	// SetConfirmationCode stores c, replacing any code already pending for the user.
	SetConfirmationCode(ctx context.Context, c *domain.ConfirmationCode) error
	GetConfirmationCode(ctx context.Context, userID int64) (*domain.ConfirmationCode, error)
	DeleteConfirmationCode(ctx context.Context, userID int64) error
}

// Taxonomy persists categories and genres.
type Taxonomy interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context, search string, p PageParams) (Page[domain.Category], error)
	DeleteCategory(ctx context.Context, slug string) error

	CreateGenre(ctx context.Context, g *domain.Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	ListGenres(ctx context.Context, search string, p PageParams) (Page[domain.Genre], error)
	DeleteGenre(ctx context.Context, slug string) error
}

// Titles persists titles with their genre links.
// Reads always include the category, genres and derived rating.
type Titles interface {
	CreateTitle(ctx context.Context, w domain.TitleWrite) (*domain.Title, error)
	GetTitle(ctx context.Context, id int64) (*domain.Title, error)
	ListTitles(ctx context.Context, f domain.TitleFilter, p PageParams) (Page[domain.Title], error)
	UpdateTitle(ctx context.Context, id int64, w domain.TitleWrite) (*domain.Title, error)
	DeleteTitle(ctx context.Context, id int64) error
}

// Content persists reviews and comments.
type Content interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error)
	ListReviews(ctx context.Context, titleID int64, p PageParams) (Page[domain.Review], error)
	UpdateReview(ctx context.Context, r *domain.Review) error
	DeleteReview(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, c *domain.Comment) error
	GetComment(ctx context.Context, reviewID, commentID int64) (*domain.Comment, error)
	ListComments(ctx context.Context, reviewID int64, p PageParams) (Page[domain.Comment], error)
	UpdateComment(ctx context.Context, c *domain.Comment) error
	DeleteComment(ctx context.Context, id int64) error
}

// Importer replaces whole tables during offline bulk loads.
type Importer interface {
	ReplaceTable(ctx context.Context, table string, columns []string, rows [][]any) (int, error)
}

// Store is the full persistence contract.
type Store interface {
	Users
	Taxonomy
	Titles
	Content
	Importer
	Ping(ctx context.Context) error
	Close() error
}
