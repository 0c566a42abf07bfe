package mention

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	mentionRepo "anoa.com/kawansosial/internal/modules/mention/repository"
	notifService "anoa.com/kawansosial/internal/modules/notification/service"
	"anoa.com/kawansosial/pkg/apperror"
	"github.com/google/uuid"
)

const mentionNotificationContent = "mentioned you in a comment"

type MentionService interface {
	// SyncMentions replaces the comment's mention set with the given user ids
	// and fans out one tag notification per inserted mention. Invoked on both
	// comment create and comment edit; unknown user ids are skipped, duplicate
	// ids produce duplicate rows.
	SyncMentions(ctx context.Context, commentID, authorID uuid.UUID, mentionedUserIDs []uuid.UUID) error
	GetMentions(ctx context.Context, commentID uuid.UUID) ([]entity.Mention, error)
}

type mentionService struct {
	repo                mentionRepo.MentionRepository
	commentRepo         commentRepo.CommentRepository
	notificationService notifService.NotificationService
}

func NewMentionService(repo mentionRepo.MentionRepository, commentRepo commentRepo.CommentRepository, notificationService notifService.NotificationService) MentionService {
	return &mentionService{
		repo:                repo,
		commentRepo:         commentRepo,
		notificationService: notificationService,
	}
}

func (s *mentionService) SyncMentions(ctx context.Context, commentID, authorID uuid.UUID, mentionedUserIDs []uuid.UUID) error {
	if commentID == uuid.Nil || authorID == uuid.Nil {
		return apperror.ErrInvalidInput
	}

	exists, err := s.commentRepo.Exists(ctx, commentID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.ErrNotFound
	}

	created, err := s.repo.Sync(ctx, commentID, authorID, mentionedUserIDs, mentionNotificationContent)
	if err != nil {
		return err
	}

	// Rows are committed at this point; the live push is best effort.
	if s.notificationService != nil {
		for i := range created {
			s.notificationService.Publish(ctx, &created[i])
		}
	}

	return nil
}

func (s *mentionService) GetMentions(ctx context.Context, commentID uuid.UUID) ([]entity.Mention, error) {
	return s.repo.FindByCommentID(ctx, commentID)
}
