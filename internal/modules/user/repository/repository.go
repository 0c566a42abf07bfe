package repository

import (
	"context"
	"strings"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	SearchByName(ctx context.Context, query string, limit int) ([]entity.User, error)
	SaveProfile(ctx context.Context, profile *entity.Profile) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// SearchByName is the database fallback when the search backend is down.
func (r *userRepository) SearchByName(ctx context.Context, query string, limit int) ([]entity.User, error) {
	var users []entity.User
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("LOWER(users.username) LIKE ? OR LOWER(profiles.first_name) LIKE ? OR LOWER(profiles.last_name) LIKE ?",
			pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepository) SaveProfile(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
