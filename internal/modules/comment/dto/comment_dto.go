package dto

import (
	"time"

	"anoa.com/kawansosial/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content  *string     `json:"content" binding:"omitempty,max=5000"`
	ImageURL *string     `json:"image_url" binding:"omitempty,url"`
	ParentID *uuid.UUID  `json:"parent_id"`
	Mentions []uuid.UUID `json:"mentions"`
}

type UpdateCommentRequest struct {
	Content     *string     `json:"content" binding:"omitempty,max=5000"`
	ImageURL    *string     `json:"image_url" binding:"omitempty,url"`
	RemoveImage bool        `json:"remove_image"`
	Mentions    []uuid.UUID `json:"mentions"`
}

type CommentFilter struct {
	ParentID *uuid.UUID `form:"parent_id"`
	Page     int        `form:"page,default=1" binding:"omitempty,min=1"`
	Limit    int        `form:"limit,default=50" binding:"omitempty,min=1,max=100"`
}

type MentionResponse struct {
	ID     uuid.UUID          `json:"id"`
	UserID uuid.UUID          `json:"user_id"`
	User   dto.AuthorResponse `json:"user"`
}

type CommentResponse struct {
	ID           uuid.UUID          `json:"id"`
	PostID       uuid.UUID          `json:"post_id"`
	ParentID     *uuid.UUID         `json:"parent_id,omitempty"`
	Author       dto.AuthorResponse `json:"author"`
	Content      *string            `json:"content,omitempty"`
	ImageURL     *string            `json:"image_url,omitempty"`
	Mentions     []MentionResponse  `json:"mentions"`
	LikesCount   int64              `json:"likes_count"`
	RepliesCount int64              `json:"replies_count"`
	LikedByUser  bool               `json:"liked_by_user"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type PaginatedCommentResponse struct {
	Data []CommentResponse  `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}
