package repository

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MentionRepository interface {
	// Sync fully replaces the mention set of a comment: every existing row is
	// deleted, then one Mention plus one tag Notification is inserted per
	// input id that resolves to an existing user, in input order. Unknown
	// users are skipped silently. Runs in a single transaction so a reader
	// never observes an edited comment with an empty mention set.
	Sync(ctx context.Context, commentID, authorID uuid.UUID, userIDs []uuid.UUID, content string) ([]entity.Notification, error)
	FindByCommentID(ctx context.Context, commentID uuid.UUID) ([]entity.Mention, error)
	DeleteByCommentID(ctx context.Context, commentID uuid.UUID) error
}

type mentionRepository struct {
	db *gorm.DB
}

func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) Sync(ctx context.Context, commentID, authorID uuid.UUID, userIDs []uuid.UUID, content string) ([]entity.Notification, error) {
	var created []entity.Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&entity.Mention{}).Error; err != nil {
			return err
		}

		for _, userID := range userIDs {
			var count int64
			if err := tx.Model(&entity.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				// Stale client-side mention lists must not abort the write
				continue
			}

			mention := entity.Mention{
				CommentID: commentID,
				UserID:    userID,
			}
			if err := tx.Create(&mention).Error; err != nil {
				return err
			}

			notifContent := content
			notification := entity.Notification{
				UserID:      userID,
				SenderID:    authorID,
				Type:        entity.NotificationTag,
				Content:     &notifContent,
				ReferenceID: commentID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
			created = append(created, notification)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *mentionRepository) FindByCommentID(ctx context.Context, commentID uuid.UUID) ([]entity.Mention, error) {
	var mentions []entity.Mention
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("comment_id = ?", commentID).
		Order("created_at asc").
		Find(&mentions).Error
	return mentions, err
}

func (r *mentionRepository) DeleteByCommentID(ctx context.Context, commentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&entity.Mention{}).Error
}
