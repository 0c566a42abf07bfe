package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment must carry non-empty content or an image URL; the service layer
// enforces that, the schema allows both columns to be null independently.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	Post      Post       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent    *Comment   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Content   *string    `gorm:"type:text" json:"content,omitempty"`
	ImageURL  *string    `gorm:"type:text" json:"image_url,omitempty"`
	Mentions  []Mention  `gorm:"foreignKey:CommentID" json:"mentions,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Mention struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;index" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Mention) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
