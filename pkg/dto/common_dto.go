package dto

import "github.com/google/uuid"

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// ReactionsResponse is the aggregate state returned after a toggle or a read:
// the caller's own reaction (nil means none) plus recounted totals.
type ReactionsResponse struct {
	Reaction      *string `json:"reaction"`
	LikesCount    int64   `json:"likes_count"`
	DislikesCount int64   `json:"dislikes_count"`
}
