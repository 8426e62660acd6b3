package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

func TestCreateReview_ScoreBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := env.title(t, "Solaris")

	for i, score := range []int{0, 11} {
		author := env.user(t, "bad"+string(rune('a'+i)), domain.RoleUser)
		_, err := env.content.CreateReview(ctx, author, title.ID, ReviewInput{Text: ptr("meh"), Score: ptr(score)})
		requireFields(t, err, "score")
	}

	for i, score := range []int{1, 10} {
		author := env.user(t, "good"+string(rune('a'+i)), domain.RoleUser)
		_, err := env.content.CreateReview(ctx, author, title.ID, ReviewInput{Text: ptr("ok"), Score: ptr(score)})
		assert.NoError(t, err, "score %d", score)
	}

	_, err := env.content.CreateReview(ctx, env.user(t, "blank", domain.RoleUser), title.ID, ReviewInput{})
	fields := requireFields(t, err, "text", "score")
	assert.Equal(t, []string{"This field is required."}, fields["score"])
}

func TestCreateReview_OncePerAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := env.title(t, "Solaris")
	alice := env.user(t, "alice", domain.RoleUser)
	bob := env.user(t, "bob", domain.RoleUser)

	_, err := env.content.CreateReview(ctx, alice, title.ID, ReviewInput{Text: ptr("great"), Score: ptr(9)})
	require.NoError(t, err)

	_, err = env.content.CreateReview(ctx, alice, title.ID, ReviewInput{Text: ptr("again"), Score: ptr(2)})
	fields := requireFields(t, err, domainerrors.NonFieldErrors)
	assert.Equal(t, []string{"You have already reviewed this title."}, fields[domainerrors.NonFieldErrors])

	_, err = env.content.CreateReview(ctx, bob, title.ID, ReviewInput{Text: ptr("fine"), Score: ptr(5)})
	assert.NoError(t, err)
}

func TestReviews_RatingProjection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := env.title(t, "Solaris")

	got, err := env.titles.Get(ctx, nil, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)

	for i, score := range []int{2, 4} {
		author := env.user(t, string(rune('a'+i))+"reviewer", domain.RoleUser)
		_, err := env.content.CreateReview(ctx, author, title.ID, ReviewInput{Text: ptr("x"), Score: ptr(score)})
		require.NoError(t, err)
	}

	got, err = env.titles.Get(ctx, nil, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 3, *got.Rating)
}

func TestReviews_ParentResolutionBeforeAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.CreateReview(ctx, nil, 999, ReviewInput{Text: ptr("x"), Score: ptr(5)})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	title := env.title(t, "Solaris")
	_, err = env.content.CreateReview(ctx, nil, title.ID, ReviewInput{Text: ptr("x"), Score: ptr(5)})
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	list, err := env.content.ListReviews(ctx, nil, title.ID, page())
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
}

func TestReviews_OwnershipRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := env.title(t, "Solaris")
	author := env.user(t, "author", domain.RoleUser)
	other := env.user(t, "other", domain.RoleUser)
	moderator := env.user(t, "mod", domain.RoleModerator)
	admin := env.user(t, "boss", domain.RoleAdmin)

	review, err := env.content.CreateReview(ctx, author, title.ID, ReviewInput{Text: ptr("mine"), Score: ptr(7)})
	require.NoError(t, err)

	_, err = env.content.UpdateReview(ctx, other, title.ID, review.ID, ReviewInput{Score: ptr(1)})
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))

	_, err = env.content.UpdateReview(ctx, nil, title.ID, review.ID, ReviewInput{Score: ptr(1)})
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	updated, err := env.content.UpdateReview(ctx, author, title.ID, review.ID, ReviewInput{Score: ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Score)
	assert.Equal(t, "mine", updated.Text)

	_, err = env.content.UpdateReview(ctx, moderator, title.ID, review.ID, ReviewInput{Text: ptr("moderated")})
	require.NoError(t, err)

	_, err = env.content.UpdateReview(ctx, author, title.ID, review.ID, ReviewInput{Score: ptr(11)})
	requireFields(t, err, "score")

	require.NoError(t, env.content.DeleteReview(ctx, admin, title.ID, review.ID))
	_, err = env.content.GetReview(ctx, nil, title.ID, review.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestComments_ScopedThroughTitleAndReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	solaris := env.title(t, "Solaris")
	stalker := env.title(t, "Stalker")
	author := env.user(t, "author", domain.RoleUser)
	other := env.user(t, "other", domain.RoleUser)

	review, err := env.content.CreateReview(ctx, author, solaris.ID, ReviewInput{Text: ptr("r"), Score: ptr(6)})
	require.NoError(t, err)

	comment, err := env.content.CreateComment(ctx, other, solaris.ID, review.ID, CommentInput{Text: ptr("agree")})
	require.NoError(t, err)
	assert.Equal(t, "other", comment.AuthorUsername)

	_, err = env.content.GetComment(ctx, nil, stalker.ID, review.ID, comment.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	_, err = env.content.CreateComment(ctx, other, solaris.ID, review.ID, CommentInput{})
	requireFields(t, err, "text")

	_, err = env.content.UpdateComment(ctx, author, solaris.ID, review.ID, comment.ID, CommentInput{Text: ptr("hijack")})
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))

	updated, err := env.content.UpdateComment(ctx, other, solaris.ID, review.ID, comment.ID, CommentInput{Text: ptr("edited")})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	list, err := env.content.ListComments(ctx, nil, solaris.ID, review.ID, page())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	require.NoError(t, env.content.DeleteComment(ctx, other, solaris.ID, review.ID, comment.ID))
}
