package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
}

type UserSearchFilter struct {
	Query string `form:"q" binding:"required,min=1"`
	Limit int    `form:"limit,default=10" binding:"omitempty,min=1,max=50"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Location  *string   `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}
