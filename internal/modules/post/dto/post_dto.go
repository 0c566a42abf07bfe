package dto

import (
	"time"

	"anoa.com/kawansosial/pkg/dto"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Content  *string `json:"content" binding:"omitempty,max=10000"`
	ImageURL *string `json:"image_url" binding:"omitempty,url"`
}

type UpdatePostRequest struct {
	Content     *string `json:"content" binding:"omitempty,max=10000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url"`
	RemoveImage bool    `json:"remove_image"`
}

type PostFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=50"`
}

type PostResponse struct {
	ID            uuid.UUID          `json:"id"`
	Author        dto.AuthorResponse `json:"author"`
	Content       *string            `json:"content,omitempty"`
	ImageURL      *string            `json:"image_url,omitempty"`
	LikesCount    int64              `json:"likes_count"`
	DislikesCount int64              `json:"dislikes_count"`
	CommentsCount int64              `json:"comments_count"`
	UserReaction  *string            `json:"user_reaction"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type PaginatedPostResponse struct {
	Data []PostResponse     `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}
