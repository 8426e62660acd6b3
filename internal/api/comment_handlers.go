package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/service"
)

const commentsPath = reviewsPath + "/{review_id}/comments"

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        commentsPath,
		Summary:     "List comments",
		Description: "Public. Oldest first.",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        commentsPath,
		Summary:     "Create comment",
		Description: "Authenticated users",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "getComment",
		Method:      http.MethodGet,
		Path:        commentsPath + "/{comment_id}",
		Summary:     "Get comment",
		Tags:        []string{"Comments"},
	}, s.handleGetComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPatch,
		Path:        commentsPath + "/{comment_id}",
		Summary:     "Update comment",
		Description: "The author, moderators and admins.",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteComment",
		Method:        http.MethodDelete,
		Path:          commentsPath + "/{comment_id}",
		Summary:       "Delete comment",
		Description:   "The author, moderators and admins.",
		Tags:          []string{"Comments"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteComment)
}

// === DTOs ===

// CommentResponse contains comment data in API responses.
type CommentResponse struct {
	ID      int64     `json:"id" doc:"Comment ID"`
	Text    string    `json:"text" doc:"Comment text"`
	Author  string    `json:"author" doc:"Author username"`
	PubDate time.Time `json:"pub_date" doc:"Publication time"`
	Review  int64     `json:"review" doc:"Review ID"`
}

func toCommentResponse(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.AuthorUsername,
		PubDate: c.PubDate,
		Review:  c.ReviewID,
	}
}

// CommentOutput wraps a comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// ListCommentsInput contains parameters for listing a review's comments.
type ListCommentsInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
	PageQuery
}

// ListCommentsOutput wraps a page of comments for Huma.
type ListCommentsOutput struct {
	Body Page[CommentResponse]
}

// CommentRequest is the request body for creating or updating a comment.
type CommentRequest struct {
	_ struct{} `additionalProperties:"true"`

	Text *string `json:"text,omitempty" doc:"Comment text"`
}

// CreateCommentInput wraps the create comment request for Huma.
type CreateCommentInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
	Body          CommentRequest
}

// CommentPathInput identifies a comment under its review and title.
type CommentPathInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
	CommentID     int64  `path:"comment_id" doc:"Comment ID"`
}

// UpdateCommentInput wraps the update comment request for Huma.
type UpdateCommentInput struct {
	Authorization string `header:"Authorization"`
	TitleID       int64  `path:"title_id" doc:"Title ID"`
	ReviewID      int64  `path:"review_id" doc:"Review ID"`
	CommentID     int64  `path:"comment_id" doc:"Comment ID"`
	Body          CommentRequest
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	p := s.pageParams(input.PageQuery)
	comments, err := s.services.Content.ListComments(ctx, actor, input.TitleID, input.ReviewID, p)
	if err != nil {
		return nil, err
	}

	page, err := newPage(input.PageQuery, p, comments, toCommentResponse)
	if err != nil {
		return nil, err
	}
	return &ListCommentsOutput{Body: page}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Content.CreateComment(ctx, actor, input.TitleID, input.ReviewID, service.CommentInput{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: toCommentResponse(*comment)}, nil
}

func (s *Server) handleGetComment(ctx context.Context, input *CommentPathInput) (*CommentOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Content.GetComment(ctx, actor, input.TitleID, input.ReviewID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: toCommentResponse(*comment)}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Content.UpdateComment(ctx, actor, input.TitleID, input.ReviewID, input.CommentID, service.CommentInput{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: toCommentResponse(*comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentPathInput) (*struct{}, error) {
	actor, err := s.actor(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return nil, s.services.Content.DeleteComment(ctx, actor, input.TitleID, input.ReviewID, input.CommentID)
}
