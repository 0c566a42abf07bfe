package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTag           = "tag"
	NotificationFriendRequest = "friend_request"
)

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Sender      User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Type        string    `gorm:"size:30;not null" json:"type"`
	Content     *string   `gorm:"type:text" json:"content,omitempty"`
	ReferenceID uuid.UUID `gorm:"type:uuid;index" json:"reference_id"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
