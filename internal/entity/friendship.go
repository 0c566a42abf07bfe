package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

type Friendship struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair,priority:1" json:"requester_id"`
	Requester   User      `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE" json:"requester,omitempty"`
	AddresseeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair,priority:2" json:"addressee_id"`
	Addressee   User      `gorm:"foreignKey:AddresseeID;constraint:OnDelete:CASCADE" json:"addressee,omitempty"`
	Status      string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
