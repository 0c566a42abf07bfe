package friendship

import (
	"context"

	"anoa.com/kawansosial/internal/entity"
	friendshipDto "anoa.com/kawansosial/internal/modules/friendship/dto"
	friendshipRepo "anoa.com/kawansosial/internal/modules/friendship/repository"
	notifService "anoa.com/kawansosial/internal/modules/notification/service"
	userRepo "anoa.com/kawansosial/internal/modules/user/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"anoa.com/kawansosial/pkg/dto"
	"github.com/google/uuid"
)

const friendRequestNotificationContent = "sent you a friend request"

type FriendshipService interface {
	SendRequest(ctx context.Context, requesterID uuid.UUID, req friendshipDto.SendFriendRequestRequest) (*entity.Friendship, error)
	AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) error
	RejectRequest(ctx context.Context, userID, requestID uuid.UUID) error
	CancelRequest(ctx context.Context, requesterID, addresseeID uuid.UUID) error
	Unfriend(ctx context.Context, userID, friendID uuid.UUID) error
	GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]friendshipDto.FriendRequestResponse, error)
	GetFriends(ctx context.Context, userID uuid.UUID) ([]friendshipDto.FriendResponse, error)
	GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.AuthorResponse, error)
}

type friendshipService struct {
	repo                friendshipRepo.FriendshipRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
}

func NewFriendshipService(repo friendshipRepo.FriendshipRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService) FriendshipService {
	return &friendshipService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, requesterID uuid.UUID, req friendshipDto.SendFriendRequestRequest) (*entity.Friendship, error) {
	if requesterID == uuid.Nil || req.AddresseeID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}
	if requesterID == req.AddresseeID {
		return nil, apperror.ErrBadRequest
	}

	exists, err := s.userRepo.Exists(ctx, req.AddresseeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.ErrNotFound
	}

	existing, err := s.repo.FindBetween(ctx, requesterID, req.AddresseeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// pending, accepted and blocked all refuse a new request
		return nil, apperror.ErrBadRequest
	}

	friendship := &entity.Friendship{
		RequesterID: requesterID,
		AddresseeID: req.AddresseeID,
		Status:      entity.FriendshipPending,
	}
	if err := s.repo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		content := friendRequestNotificationContent
		_ = s.notificationService.CreateNotification(ctx, &entity.Notification{
			UserID:      req.AddresseeID,
			SenderID:    requesterID,
			Type:        entity.NotificationFriendRequest,
			Content:     &content,
			ReferenceID: friendship.ID,
		})
	}

	return friendship, nil
}

func (s *friendshipService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	return s.resolveRequest(ctx, userID, requestID, entity.FriendshipAccepted)
}

func (s *friendshipService) RejectRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	friendship, err := s.pendingForAddressee(ctx, userID, requestID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, friendship.ID)
}

func (s *friendshipService) resolveRequest(ctx context.Context, userID, requestID uuid.UUID, status string) error {
	friendship, err := s.pendingForAddressee(ctx, userID, requestID)
	if err != nil {
		return err
	}
	friendship.Status = status
	return s.repo.Save(ctx, friendship)
}

func (s *friendshipService) pendingForAddressee(ctx context.Context, userID, requestID uuid.UUID) (*entity.Friendship, error) {
	if userID == uuid.Nil || requestID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	friendship, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if friendship.AddresseeID != userID {
		return nil, apperror.ErrForbidden
	}
	if friendship.Status != entity.FriendshipPending {
		return nil, apperror.ErrBadRequest
	}
	return friendship, nil
}

func (s *friendshipService) CancelRequest(ctx context.Context, requesterID, addresseeID uuid.UUID) error {
	if requesterID == uuid.Nil || addresseeID == uuid.Nil {
		return apperror.ErrInvalidInput
	}

	friendship, err := s.repo.FindBetween(ctx, requesterID, addresseeID)
	if err != nil {
		return err
	}
	if friendship == nil || friendship.Status != entity.FriendshipPending {
		return apperror.ErrNotFound
	}
	if friendship.RequesterID != requesterID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, friendship.ID)
}

func (s *friendshipService) Unfriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == uuid.Nil || friendID == uuid.Nil {
		return apperror.ErrInvalidInput
	}

	friendship, err := s.repo.FindBetween(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if friendship == nil || friendship.Status != entity.FriendshipAccepted {
		return apperror.ErrNotFound
	}
	return s.repo.Delete(ctx, friendship.ID)
}

func (s *friendshipService) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]friendshipDto.FriendRequestResponse, error) {
	friendships, err := s.repo.FindPendingForAddressee(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]friendshipDto.FriendRequestResponse, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		responses = append(responses, friendshipDto.FriendRequestResponse{
			ID:        f.ID,
			Requester: toAuthor(&f.Requester),
			Status:    f.Status,
			CreatedAt: f.CreatedAt,
		})
	}
	return responses, nil
}

func (s *friendshipService) GetFriends(ctx context.Context, userID uuid.UUID) ([]friendshipDto.FriendResponse, error) {
	friendships, err := s.repo.FindFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]friendshipDto.FriendResponse, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		friend := &f.Requester
		if f.RequesterID == userID {
			friend = &f.Addressee
		}
		responses = append(responses, friendshipDto.FriendResponse{
			User:  toAuthor(friend),
			Since: f.UpdatedAt,
		})
	}
	return responses, nil
}

func (s *friendshipService) GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.AuthorResponse, error) {
	if limit < 1 {
		limit = 10
	}

	users, err := s.repo.FindSuggestions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AuthorResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toAuthor(&users[i]))
	}
	return responses, nil
}

func toAuthor(user *entity.User) dto.AuthorResponse {
	author := dto.AuthorResponse{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}
	if user.Profile != nil {
		author.FirstName = user.Profile.FirstName
		author.LastName = user.Profile.LastName
	}
	return author
}
