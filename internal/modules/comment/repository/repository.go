package repository

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	FindByPostID(ctx context.Context, postID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]*entity.Comment, int64, error)
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsUnderPost(ctx context.Context, id, postID uuid.UUID) (bool, error)
	CountReplies(ctx context.Context, id uuid.UUID) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Preload("Mentions.User").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByPostID(ctx context.Context, postID uuid.UUID, parentID *uuid.UUID, offset, limit int) ([]*entity.Comment, int64, error) {
	var comments []*entity.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("post_id = ?", postID)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("User.Profile").
		Preload("Mentions.User").
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete removes the comment together with its mentions, reactions and the
// notifications that reference it, mirroring subject-owned cascade semantics.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&entity.Mention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_kind = ? AND subject_id = ?", entity.SubjectComment, id).
			Delete(&entity.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reference_id = ?", id).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Comment{}).Error
	})
}

func (r *commentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *commentRepository) ExistsUnderPost(ctx context.Context, id, postID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ? AND post_id = ?", id, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *commentRepository) CountReplies(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}
