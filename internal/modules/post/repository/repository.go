package repository

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	FindFeed(ctx context.Context, offset, limit int) ([]*entity.Post, int64, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Post, int64, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	CountComments(ctx context.Context, id uuid.UUID) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindFeed(ctx context.Context, offset, limit int) ([]*entity.Post, int64, error) {
	var posts []*entity.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Post{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("User.Profile").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	var posts []*entity.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Post{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("User.Profile").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes the post and everything hanging off it: comments (with
// their mentions and reactions), the post's own reactions, and notifications
// that reference the post.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uuid.UUID
		if err := tx.Model(&entity.Comment{}).
			Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&entity.Mention{}).Error; err != nil {
				return err
			}
			if err := tx.Where("subject_kind = ? AND subject_id IN ?", entity.SubjectComment, commentIDs).
				Delete(&entity.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("reference_id IN ?", commentIDs).Delete(&entity.Notification{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("subject_kind = ? AND subject_id = ?", entity.SubjectPost, id).
			Delete(&entity.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reference_id = ?", id).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&entity.Post{}).Error
	})
}

func (r *postRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) CountComments(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("post_id = ?", id).
		Count(&count).Error
	return count, err
}
