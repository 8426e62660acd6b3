package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// ReviewInput is a review write. Nil fields are left unchanged on update.
type ReviewInput struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// CommentInput is a comment write.
type CommentInput struct {
	Text *string `json:"text"`
}

type reviewFields struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"gte=1,lte=10"`
}

type commentFields struct {
	Text string `json:"text" validate:"required"`
}

// ContentService manages reviews and comments under their titles.
type ContentService struct {
	titles    store.Titles
	content   store.Content
	policy    *policy.Enforcer
	validator *validation.Validator
	now       func() time.Time
	logger    *slog.Logger
}

// NewContentService creates a content service.
func NewContentService(titles store.Titles, content store.Content, p *policy.Enforcer, v *validation.Validator, logger *slog.Logger) *ContentService {
	return &ContentService{titles: titles, content: content, policy: p, validator: v, now: time.Now, logger: logger}
}

func (s *ContentService) title(ctx context.Context, titleID int64) error {
	if _, err := s.titles.GetTitle(ctx, titleID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *ContentService) review(ctx context.Context, titleID, reviewID int64) (*domain.Review, error) {
	if err := s.title(ctx, titleID); err != nil {
		return nil, err
	}
	r, err := s.content.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// ListReviews returns the reviews of a title, oldest first.
func (s *ContentService) ListReviews(ctx context.Context, actor *domain.User, titleID int64, p store.PageParams) (store.Page[domain.Review], error) {
	if err := s.title(ctx, titleID); err != nil {
		return store.Page[domain.Review]{}, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionRead); err != nil {
		return store.Page[domain.Review]{}, err
	}
	return s.content.ListReviews(ctx, titleID, p)
}

// GetReview returns one review of a title.
func (s *ContentService) GetReview(ctx context.Context, actor *domain.User, titleID, reviewID int64) (*domain.Review, error) {
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionRead); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReview adds the caller's review of a title. Each author may review a
// title once.
func (s *ContentService) CreateReview(ctx context.Context, actor *domain.User, titleID int64, in ReviewInput) (*domain.Review, error) {
	if err := s.title(ctx, titleID); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionCreate); err != nil {
		return nil, err
	}

	fields := domainerrors.FieldErrors{}
	r := &domain.Review{TitleID: titleID, AuthorID: actor.ID, AuthorUsername: actor.Username, PubDate: s.now()}
	if in.Text != nil {
		r.Text = *in.Text
	}
	if in.Score == nil {
		fields.Add("score", "This field is required.")
	} else {
		r.Score = *in.Score
	}
	if err := s.validateReview(r, fields); err != nil {
		return nil, err
	}

	if err := s.content.CreateReview(ctx, r); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(domainerrors.NonFieldErrors, msgAlreadyReviewed)
		}
		return nil, fmt.Errorf("save review: %w", err)
	}

	logFor(ctx, s.logger).Info("review created", "review_id", r.ID, "title_id", titleID, "author", actor.Username)
	return r, nil
}

// UpdateReview edits a review. Authors may edit their own; moderators and
// admins may edit any.
func (s *ContentService) UpdateReview(ctx context.Context, actor *domain.User, titleID, reviewID int64, in ReviewInput) (*domain.Review, error) {
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwned(actor, policy.ResourceContent, r.AuthorID); err != nil {
		return nil, err
	}

	if in.Text != nil {
		r.Text = *in.Text
	}
	if in.Score != nil {
		r.Score = *in.Score
	}
	if err := s.validateReview(r, domainerrors.FieldErrors{}); err != nil {
		return nil, err
	}

	if err := s.content.UpdateReview(ctx, r); err != nil {
		return nil, notFound(err)
	}
	logFor(ctx, s.logger).Info("review updated", "review_id", r.ID, "by", actor.Username)
	return r, nil
}

// DeleteReview removes a review and its comments.
func (s *ContentService) DeleteReview(ctx context.Context, actor *domain.User, titleID, reviewID int64) error {
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeOwned(actor, policy.ResourceContent, r.AuthorID); err != nil {
		return err
	}
	if err := s.content.DeleteReview(ctx, r.ID); err != nil {
		return notFound(err)
	}
	logFor(ctx, s.logger).Info("review deleted", "review_id", r.ID, "by", actor.Username)
	return nil
}

func (s *ContentService) validateReview(r *domain.Review, fields domainerrors.FieldErrors) error {
	err := s.validator.Validate(reviewFields{Text: r.Text, Score: r.Score})
	if verr := domainerrors.FieldsOf(err); verr != nil {
		for field, msgs := range verr {
			// A missing score is already reported; skip the range message for it.
			if _, seen := fields[field]; !seen {
				fields[field] = msgs
			}
		}
	} else if err != nil {
		return err
	}
	return fields.Err()
}

// ListComments returns the comments on a review, oldest first.
func (s *ContentService) ListComments(ctx context.Context, actor *domain.User, titleID, reviewID int64, p store.PageParams) (store.Page[domain.Comment], error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return store.Page[domain.Comment]{}, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionRead); err != nil {
		return store.Page[domain.Comment]{}, err
	}
	return s.content.ListComments(ctx, reviewID, p)
}

// GetComment returns one comment on a review.
func (s *ContentService) GetComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionRead); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment adds the caller's comment to a review.
func (s *ContentService) CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID int64, in CommentInput) (*domain.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, policy.ResourceContent, policy.ActionCreate); err != nil {
		return nil, err
	}

	c := &domain.Comment{ReviewID: reviewID, AuthorID: actor.ID, AuthorUsername: actor.Username, PubDate: s.now()}
	if in.Text != nil {
		c.Text = *in.Text
	}
	if err := s.validator.Validate(commentFields{Text: c.Text}); err != nil {
		return nil, err
	}

	if err := s.content.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	logFor(ctx, s.logger).Info("comment created", "comment_id", c.ID, "review_id", reviewID, "author", actor.Username)
	return c, nil
}

// UpdateComment edits a comment under the same rules as reviews.
func (s *ContentService) UpdateComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID int64, in CommentInput) (*domain.Comment, error) {
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.AuthorizeOwned(actor, policy.ResourceContent, c.AuthorID); err != nil {
		return nil, err
	}

	if in.Text != nil {
		c.Text = *in.Text
	}
	if err := s.validator.Validate(commentFields{Text: c.Text}); err != nil {
		return nil, err
	}

	if err := s.content.UpdateComment(ctx, c); err != nil {
		return nil, notFound(err)
	}
	logFor(ctx, s.logger).Info("comment updated", "comment_id", c.ID, "by", actor.Username)
	return c, nil
}

// DeleteComment removes a comment.
func (s *ContentService) DeleteComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID int64) error {
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeOwned(actor, policy.ResourceContent, c.AuthorID); err != nil {
		return err
	}
	if err := s.content.DeleteComment(ctx, c.ID); err != nil {
		return notFound(err)
	}
	logFor(ctx, s.logger).Info("comment deleted", "comment_id", c.ID, "by", actor.Username)
	return nil
}

func (s *ContentService) comment(ctx context.Context, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.content.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
