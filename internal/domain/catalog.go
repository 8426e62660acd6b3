package domain

import "time"

// Field limits for catalog entries.
const (
	CatalogNameMaxLength = 256
	SlugMaxLength        = 50
)

// Category groups titles by kind of work ("Books", "Films").
type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre is a tag applied to any number of titles.
type Genre struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a catalogued work.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Description string
	// Category is nil when unset or after its category was deleted.
	Category *Category
	Genres   []Genre
	// Rating is the truncated mean review score, nil when there are no reviews.
	Rating *int
}

// TitleWrite carries the writable title attributes with references resolved to ids.
type TitleWrite struct {
	Name        string
	Year        int
	Description string
	CategoryID  *int64
	GenreIDs    []int64
}

// TitleFilter narrows a title listing.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
	// Ordering is one of name, -name, year, -year.
	Ordering string
}

// TitleOrderings lists accepted ordering values.
var TitleOrderings = []string{"name", "-name", "year", "-year"}

// Review is a scored opinion of a title; one per author per title.
type Review struct {
	ID             int64
	TitleID        int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	Score          int
	PubDate        time.Time
}

// Comment is a reply to a review.
type Comment struct {
	ID             int64
	ReviewID       int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	PubDate        time.Time
}

// Score bounds for reviews.
const (
	MinScore = 1
	MaxScore = 10
)
