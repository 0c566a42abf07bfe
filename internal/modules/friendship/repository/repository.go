package repository

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *entity.Friendship) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Friendship, error)
	// FindBetween looks up the edge in either direction.
	FindBetween(ctx context.Context, a, b uuid.UUID) (*entity.Friendship, error)
	Save(ctx context.Context, friendship *entity.Friendship) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindPendingForAddressee(ctx context.Context, addresseeID uuid.UUID) ([]entity.Friendship, error)
	FindFriends(ctx context.Context, userID uuid.UUID) ([]entity.Friendship, error)
	FindSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.User, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *entity.Friendship) error {
	return r.db.WithContext(ctx).Create(friendship).Error
}

func (r *friendshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Friendship, error) {
	var friendship entity.Friendship
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Requester.Profile").
		Where("id = ?", id).
		First(&friendship).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

func (r *friendshipRepository) FindBetween(ctx context.Context, a, b uuid.UUID) (*entity.Friendship, error) {
	var friendships []entity.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			a, b, b, a).
		Limit(1).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	if len(friendships) == 0 {
		return nil, nil
	}
	return &friendships[0], nil
}

func (r *friendshipRepository) Save(ctx context.Context, friendship *entity.Friendship) error {
	return r.db.WithContext(ctx).Save(friendship).Error
}

func (r *friendshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Friendship{}).Error
}

func (r *friendshipRepository) FindPendingForAddressee(ctx context.Context, addresseeID uuid.UUID) ([]entity.Friendship, error) {
	var friendships []entity.Friendship
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Requester.Profile").
		Where("addressee_id = ? AND status = ?", addresseeID, entity.FriendshipPending).
		Order("created_at desc").
		Find(&friendships).Error
	return friendships, err
}

func (r *friendshipRepository) FindFriends(ctx context.Context, userID uuid.UUID) ([]entity.Friendship, error) {
	var friendships []entity.Friendship
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Requester.Profile").
		Preload("Addressee").
		Preload("Addressee.Profile").
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?",
			userID, userID, entity.FriendshipAccepted).
		Order("updated_at desc").
		Find(&friendships).Error
	return friendships, err
}

// FindSuggestions returns users with no friendship edge to userID at all.
func (r *friendshipRepository) FindSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("users.id != ?", userID).
		Where("users.id NOT IN (?)",
			r.db.Model(&entity.Friendship{}).
				Select("addressee_id").
				Where("requester_id = ?", userID)).
		Where("users.id NOT IN (?)",
			r.db.Model(&entity.Friendship{}).
				Select("requester_id").
				Where("addressee_id = ?", userID)).
		Limit(limit).
		Find(&users).Error
	return users, err
}
