package repository

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	// Toggle returns oldType (if any) and newType (if any) after applying the
	// transition: absent->insert, same->delete, different->update.
	Toggle(ctx context.Context, reaction *entity.Reaction) (string, string, error)
	FindUserReaction(ctx context.Context, userID uuid.UUID, kind string, subjectID uuid.UUID) (*string, error)
	CountByType(ctx context.Context, kind string, subjectID uuid.UUID) (int64, int64, error)
	DeleteBySubject(ctx context.Context, kind string, subjectID uuid.UUID) error
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction *entity.Reaction) (string, string, error) {
	var oldType, newType string

	// The whole read-then-act runs in one transaction; the unique index on
	// (subject_kind, subject_id, user_id) guards the race between two
	// concurrent first-time inserts.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with a slice avoids "record not found" log noise from First()
		var existing []entity.Reaction
		if err := tx.
			Where("subject_kind = ? AND subject_id = ? AND user_id = ?",
				reaction.SubjectKind, reaction.SubjectID, reaction.UserID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) == 0 {
			if err := tx.Create(reaction).Error; err != nil {
				return err
			}
			newType = reaction.Type
			return nil
		}

		record := existing[0]
		oldType = record.Type

		if record.Type == reaction.Type {
			// Same type resent -> toggle off
			return tx.Delete(&record).Error
		}

		// Opposite type -> switch in place
		record.Type = reaction.Type
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		newType = reaction.Type
		return nil
	})

	if err != nil {
		return "", "", err
	}
	return oldType, newType, nil
}

func (r *reactionRepository) FindUserReaction(ctx context.Context, userID uuid.UUID, kind string, subjectID uuid.UUID) (*string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Where("subject_kind = ? AND subject_id = ? AND user_id = ?", kind, subjectID, userID).
		Limit(1).
		Pluck("type", &types).Error
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (r *reactionRepository) CountByType(ctx context.Context, kind string, subjectID uuid.UUID) (int64, int64, error) {
	type result struct {
		Type  string
		Count int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("type, count(*) as count").
		Where("subject_kind = ? AND subject_id = ?", kind, subjectID).
		Group("type").
		Scan(&results).Error
	if err != nil {
		return 0, 0, err
	}

	var likes, dislikes int64
	for _, res := range results {
		switch res.Type {
		case entity.ReactionLike:
			likes = res.Count
		case entity.ReactionDislike:
			dislikes = res.Count
		}
	}
	return likes, dislikes, nil
}

func (r *reactionRepository) DeleteBySubject(ctx context.Context, kind string, subjectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("subject_kind = ? AND subject_id = ?", kind, subjectID).
		Delete(&entity.Reaction{}).Error
}
