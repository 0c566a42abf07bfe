package user

import (
	"context"
	"log"

	"anoa.com/kawansosial/internal/entity"
	search "anoa.com/kawansosial/internal/modules/search/service"
	userDto "anoa.com/kawansosial/internal/modules/user/dto"
	userRepo "anoa.com/kawansosial/internal/modules/user/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"github.com/google/uuid"
)

type UserService interface {
	GetProfileByUsername(ctx context.Context, username string) (*userDto.ProfileResponse, error)
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*userDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) (*userDto.ProfileResponse, error)
	SearchUsers(ctx context.Context, filter userDto.UserSearchFilter) ([]userDto.UserSummaryResponse, error)
}

type userService struct {
	repo          userRepo.UserRepository
	searchService search.SearchService
}

func NewUserService(repo userRepo.UserRepository, searchService search.SearchService) UserService {
	return &userService{
		repo:          repo,
		searchService: searchService,
	}
}

func (s *userService) GetProfileByUsername(ctx context.Context, username string) (*userDto.ProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	resp := toProfile(user)
	// Email stays private on public profiles
	resp.Email = ""
	return resp, nil
}

func (s *userService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*userDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return toProfile(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) (*userDto.ProfileResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: userID}
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Location != nil {
		profile.Location = req.Location
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	user.Profile = profile
	if s.searchService != nil {
		if err := s.searchService.IndexUser(user); err != nil {
			log.Printf("failed to reindex user %s: %v", user.ID, err)
		}
	}

	return toProfile(user), nil
}

func (s *userService) SearchUsers(ctx context.Context, filter userDto.UserSearchFilter) ([]userDto.UserSummaryResponse, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var users []entity.User

	if s.searchService != nil {
		ids, err := s.searchService.SearchUsers(filter.Query, int64(limit))
		if err == nil && len(ids) > 0 {
			users, err = s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
		} else if err != nil {
			log.Printf("user search backend failed, falling back to database: %v", err)
		}
	}

	if users == nil {
		var err error
		users, err = s.repo.SearchByName(ctx, filter.Query, limit)
		if err != nil {
			return nil, err
		}
	}

	results := make([]userDto.UserSummaryResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		summary := userDto.UserSummaryResponse{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
		}
		if u.Profile != nil {
			summary.FirstName = u.Profile.FirstName
			summary.LastName = u.Profile.LastName
		}
		results = append(results, summary)
	}
	return results, nil
}

func toProfile(user *entity.User) *userDto.ProfileResponse {
	resp := &userDto.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		resp.FirstName = user.Profile.FirstName
		resp.LastName = user.Profile.LastName
		resp.Bio = user.Profile.Bio
		resp.Location = user.Profile.Location
	}
	return resp
}
