package dto

import (
	"time"

	"anoa.com/kawansosial/pkg/dto"
	"github.com/google/uuid"
)

type SendFriendRequestRequest struct {
	AddresseeID uuid.UUID `json:"addressee_id" binding:"required"`
}

type UnfriendRequest struct {
	FriendID uuid.UUID `json:"friend_id" binding:"required"`
}

type FriendRequestResponse struct {
	ID        uuid.UUID          `json:"id"`
	Requester dto.AuthorResponse `json:"requester"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type FriendResponse struct {
	User  dto.AuthorResponse `json:"user"`
	Since time.Time          `json:"since"`
}
