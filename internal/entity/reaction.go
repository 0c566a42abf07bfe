package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubjectPost    = "post"
	SubjectComment = "comment"

	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Reaction presence is the state: a user either has exactly one row per
// subject or none at all. The composite unique index turns a concurrent
// double-insert into one success and one constraint violation.
type Reaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectKind string    `gorm:"size:20;not null;uniqueIndex:idx_reactions_subject_user,priority:1;index:idx_reactions_lookup,priority:1" json:"subject_kind"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_subject_user,priority:2;index:idx_reactions_lookup,priority:2" json:"subject_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_subject_user,priority:3" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type        string    `gorm:"size:10;not null" json:"type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func ValidSubjectKind(kind string) bool {
	return kind == SubjectPost || kind == SubjectComment
}

func ValidReactionType(t string) bool {
	return t == ReactionLike || t == ReactionDislike
}
