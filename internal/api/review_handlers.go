package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/service"
)

const reviewsPath = "/api/v1/titles/{title_id}/reviews"

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        reviewsPath,
		Summary:     "List reviews",
		Description: "Public. Oldest first.",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReview",
		Method:      http.MethodPost,
		Path:        reviewsPath,
		Summary:     "Create review",
		Description: "Authenticated users, one review per title. Score is 1 to 10.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        reviewsPath + "/{review_id}",
		Summary:     "Get review",
		Tags:        []string{"Reviews"},
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        reviewsPath + "/{review_id}",
		Summary:     "Update review",
		Description: "The author, moderators and admins.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          reviewsPath + "/{review_id}",
		Summary:       "Delete review",
		Description:   "The author, moderators and admins. Removes the review's comments.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID      int64     `json:"id" doc:"Review ID"`
	Text    string    `json:"text" doc:"Review text"`
	Author  string    `json:"author" doc:"Author username"`
	Score   int       `json:"score" doc:"Score from 1 to 10"`
	PubDate time.Time `json:"pub_date" doc:"Publication time"`
	Title   int64     `json:"title" doc:"Title ID"`
}

func toReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.AuthorUsername,
		Score:   r.Score,
		PubDate: r.PubDate,
		Title:   r.TitleID,
	}
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// ListReviewsInput contains parameters for listing a title's reviews.
type ListReviewsInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	PageQuery
}

// ListReviewsOutput wraps a page of reviews for Huma.
type ListReviewsOutput struct {
	Body Page[ReviewResponse]
}

// ReviewRequest is the request body for creating or updating a review.
// Unknown fields, including the read-only author and title, are ignored.
type ReviewRequest struct {
	_ struct{} `additionalProperties:"true"`

	Text  *string `json:"text,omitempty" doc:"Review text"`
	Score *int    `json:"score,omitempty" doc:"Score from 1 to 10"`
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	Body          ReviewRequest
}

// ReviewPathInput identifies a review under its title.
type ReviewPathInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
}

// UpdateReviewInput wraps the update review request for Huma.
type UpdateReviewInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
	Body          ReviewRequest
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	p := s.pageParams(input.PageQuery)
	reviews, err := s.services.Content.ListReviews(ctx, actor, input.TitleID, p)
	if err != nil {
		return nil, err
	}

	page, err := newPage(input.PageQuery, p, reviews, toReviewResponse)
	if err != nil {
		return nil, err
	}
	return &ListReviewsOutput{Body: page}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Content.CreateReview(ctx, actor, input.TitleID, service.ReviewInput{
		Text:  input.Body.Text,
		Score: input.Body.Score,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: toReviewResponse(*review)}, nil
}

func (s *Server) handleGetReview(ctx context.Context, input *ReviewPathInput) (*ReviewOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Content.GetReview(ctx, actor, input.TitleID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: toReviewResponse(*review)}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Content.UpdateReview(ctx, actor, input.TitleID, input.ReviewID, service.ReviewInput{
		Text:  input.Body.Text,
		Score: input.Body.Score,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: toReviewResponse(*review)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewPathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Content.DeleteReview(ctx, actor, input.TitleID, input.ReviewID)
}
