package post

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"anoa.com/kawansosial/internal/entity"
	postDto "anoa.com/kawansosial/internal/modules/post/dto"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
	reactionRepo "anoa.com/kawansosial/internal/modules/reaction/repository"
	search "anoa.com/kawansosial/internal/modules/search/service"
	userRepo "anoa.com/kawansosial/internal/modules/user/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"anoa.com/kawansosial/pkg/dto"
	"anoa.com/kawansosial/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	GetPost(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error)
	GetFeed(ctx context.Context, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	GetPostsByUsername(ctx context.Context, username string, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
}

type postService struct {
	repo          postRepo.PostRepository
	userRepo      userRepo.UserRepository
	reactionRepo  reactionRepo.ReactionRepository
	searchService search.SearchService
	redisClient   *redis.Client
	sanitizer     *bluemonday.Policy
	globalLimit   time.Duration
}

func NewPostService(repo postRepo.PostRepository, userRepo userRepo.UserRepository, reactionRepo reactionRepo.ReactionRepository, searchService search.SearchService, redisClient *redis.Client, globalLimit time.Duration) PostService {
	return &postService{
		repo:          repo,
		userRepo:      userRepo,
		reactionRepo:  reactionRepo,
		searchService: searchService,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
		globalLimit:   globalLimit,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", s.globalLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are posting too fast, please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	content := s.cleanContent(req.Content)
	if content == nil && req.ImageURL == nil {
		return nil, apperror.ErrInvalidInput
	}

	post := &entity.Post{
		UserID:   userID,
		Content:  content,
		ImageURL: req.ImageURL,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		if err := s.searchService.IndexPost(post); err != nil {
			log.Printf("failed to index post %s: %v", post.ID, err)
		}
	}

	return s.buildResponse(ctx, post.ID, &userID)
}

func (s *postService) GetPost(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error) {
	return s.buildResponse(ctx, postID, userID)
}

func (s *postService) GetFeed(ctx context.Context, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	posts, total, err := s.repo.FindFeed(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return s.paginate(ctx, posts, total, page, limit, userID)
}

func (s *postService) GetPostsByUsername(ctx context.Context, username string, userID *uuid.UUID, filter postDto.PostFilter) (*postDto.PaginatedPostResponse, error) {
	author, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	posts, total, err := s.repo.FindByUserID(ctx, author.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return s.paginate(ctx, posts, total, page, limit, userID)
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error) {
	if userID == uuid.Nil || postID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if post.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	if req.Content != nil {
		post.Content = s.cleanContent(req.Content)
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	} else if req.RemoveImage {
		post.ImageURL = nil
	}

	if post.Content == nil && post.ImageURL == nil {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		if err := s.searchService.IndexPost(post); err != nil {
			log.Printf("failed to reindex post %s: %v", post.ID, err)
		}
	}

	return s.buildResponse(ctx, postID, &userID)
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	if userID == uuid.Nil || postID == uuid.Nil {
		return apperror.ErrInvalidInput
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return apperror.ErrNotFound
	}
	if post.UserID != userID {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.searchService != nil {
		if err := s.searchService.DeletePost(postID); err != nil {
			log.Printf("failed to remove post %s from index: %v", postID, err)
		}
	}

	return nil
}

func (s *postService) cleanContent(content *string) *string {
	if content == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*content)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func (s *postService) paginate(ctx context.Context, posts []*entity.Post, total int64, page, limit int, userID *uuid.UUID) (*postDto.PaginatedPostResponse, error) {
	data := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp, err := s.toResponse(ctx, p, userID)
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}

	return &postDto.PaginatedPostResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *postService) buildResponse(ctx context.Context, postID uuid.UUID, userID *uuid.UUID) (*postDto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return s.toResponse(ctx, post, userID)
}

func (s *postService) toResponse(ctx context.Context, post *entity.Post, userID *uuid.UUID) (*postDto.PostResponse, error) {
	likes, dislikes, err := s.reactionRepo.CountByType(ctx, entity.SubjectPost, post.ID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.CountComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	var userReaction *string
	if userID != nil {
		userReaction, err = s.reactionRepo.FindUserReaction(ctx, *userID, entity.SubjectPost, post.ID)
		if err != nil {
			return nil, err
		}
	}

	author := dto.AuthorResponse{
		ID:        post.User.ID,
		Username:  post.User.Username,
		AvatarURL: post.User.AvatarURL,
	}
	if post.User.Profile != nil {
		author.FirstName = post.User.Profile.FirstName
		author.LastName = post.User.Profile.LastName
	}

	return &postDto.PostResponse{
		ID:            post.ID,
		Author:        author,
		Content:       post.Content,
		ImageURL:      post.ImageURL,
		LikesCount:    likes,
		DislikesCount: dislikes,
		CommentsCount: comments,
		UserReaction:  userReaction,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
