package dto

import "github.com/google/uuid"

type SetReactionRequest struct {
	SubjectKind string    `json:"subject_kind" binding:"required,oneof=post comment"`
	SubjectID   uuid.UUID `json:"subject_id" binding:"required"`
	// Empty type defaults to "like" on the service side.
	Type string `json:"type" binding:"omitempty,oneof=like dislike"`
}
