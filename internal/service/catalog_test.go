package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

func TestCatalogService_WritesNeedAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := SlugInput{Name: "Books", Slug: "books"}

	_, err := env.catalog.CreateCategory(ctx, nil, in)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	_, err = env.catalog.CreateCategory(ctx, env.user(t, "mod", domain.RoleModerator), in)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))

	admin := env.user(t, "boss", domain.RoleAdmin)
	_, err = env.catalog.CreateCategory(ctx, admin, in)
	require.NoError(t, err)

	list, err := env.catalog.ListCategories(ctx, nil, "boo", page())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestCatalogService_SlugRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)

	_, err := env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)

	_, err = env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Drama 2", Slug: "drama"})
	fields := requireFields(t, err, "slug")
	assert.Equal(t, []string{"genre with this slug already exists."}, fields["slug"])

	_, err = env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Bad", Slug: "not a slug"})
	requireFields(t, err, "slug")

	_, err = env.catalog.CreateGenre(ctx, admin, SlugInput{})
	requireFields(t, err, "name", "slug")
}

func TestCatalogService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)
	_, err := env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)

	err = env.catalog.DeleteGenre(ctx, env.user(t, "plain", domain.RoleUser), "drama")
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))

	require.NoError(t, env.catalog.DeleteGenre(ctx, admin, "drama"))
	err = env.catalog.DeleteGenre(ctx, admin, "drama")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestTitleService_CreateResolvesSlugs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)
	_, err := env.catalog.CreateCategory(ctx, admin, SlugInput{Name: "Films", Slug: "films"})
	require.NoError(t, err)
	_, err = env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)

	title, err := env.titles.Create(ctx, admin, TitleInput{
		Name:     ptr("Stalker"),
		Year:     ptr(1979),
		Category: ptr("films"),
		Genre:    []string{"drama", "drama"},
	})
	require.NoError(t, err)
	require.NotNil(t, title.Category)
	assert.Equal(t, "films", title.Category.Slug)
	require.Len(t, title.Genres, 1)
	assert.Nil(t, title.Rating)

	_, err = env.titles.Create(ctx, admin, TitleInput{
		Name:     ptr("Nope"),
		Year:     ptr(2000),
		Category: ptr("missing"),
		Genre:    []string{"ghost"},
	})
	fields := requireFields(t, err, "category", "genre")
	assert.Equal(t, []string{"Object with slug=missing does not exist."}, fields["category"])
}

func TestTitleService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)

	_, err := env.titles.Create(ctx, admin, TitleInput{})
	requireFields(t, err, "name", "year", "category", "genre")

	_, err = env.titles.Create(ctx, admin, TitleInput{
		Name:     ptr("Future"),
		Year:     ptr(time.Now().Year() + 1),
		Category: ptr("x"),
		Genre:    []string{},
	})
	fields := requireFields(t, err, "year")
	assert.Equal(t, []string{"Year cannot be later than the current year."}, fields["year"])
}

func TestTitleService_YearHasNoLowerBound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)
	_, err := env.catalog.CreateCategory(ctx, admin, SlugInput{Name: "Books", Slug: "books"})
	require.NoError(t, err)

	title, err := env.titles.Create(ctx, admin, TitleInput{
		Name:     ptr("Iliad"),
		Year:     ptr(-750),
		Category: ptr("books"),
		Genre:    []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, -750, title.Year)
}

func TestTitleService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "boss", domain.RoleAdmin)
	_, err := env.catalog.CreateGenre(ctx, admin, SlugInput{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)
	title := env.title(t, "Solaris")

	updated, err := env.titles.Update(ctx, admin, title.ID, TitleInput{Description: ptr("Ocean"), Genre: []string{"drama"}})
	require.NoError(t, err)
	assert.Equal(t, "Solaris", updated.Name)
	assert.Equal(t, "Ocean", updated.Description)
	require.Len(t, updated.Genres, 1)

	_, err = env.titles.Update(ctx, admin, title.ID, TitleInput{Name: ptr("")})
	requireFields(t, err, "name")

	_, err = env.titles.Update(ctx, env.user(t, "plain", domain.RoleUser), title.ID, TitleInput{Name: ptr("x")})
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))

	require.NoError(t, env.titles.Delete(ctx, admin, title.ID))
	_, err = env.titles.Get(ctx, nil, title.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestTitleService_ListFallsBackToNameOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.title(t, "Beta")
	env.title(t, "Alpha")

	list, err := env.titles.List(ctx, nil, domain.TitleFilter{Ordering: "rating"}, page())
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Alpha", list.Items[0].Name)
}
