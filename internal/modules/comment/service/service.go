package comment

import (
	"context"
	"fmt"
	"math"
	"time"

	"anoa.com/kawansosial/internal/entity"
	commentDto "anoa.com/kawansosial/internal/modules/comment/dto"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	mention "anoa.com/kawansosial/internal/modules/mention/service"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
	reactionRepo "anoa.com/kawansosial/internal/modules/reaction/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"anoa.com/kawansosial/pkg/dto"
	"anoa.com/kawansosial/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error)
	GetComment(ctx context.Context, commentID uuid.UUID, userID *uuid.UUID) (*commentDto.CommentResponse, error)
	GetCommentsByPostID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID, filter commentDto.CommentFilter) (*commentDto.PaginatedCommentResponse, error)
	UpdateComment(ctx context.Context, userID, commentID uuid.UUID, req commentDto.UpdateCommentRequest) (*commentDto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type commentService struct {
	repo           commentRepo.CommentRepository
	postRepo       postRepo.PostRepository
	reactionRepo   reactionRepo.ReactionRepository
	mentionService mention.MentionService
	redisClient    *redis.Client
	sanitizer      *bluemonday.Policy
	commentLimit   time.Duration
}

func NewCommentService(repo commentRepo.CommentRepository, postRepo postRepo.PostRepository, reactionRepo reactionRepo.ReactionRepository, mentionService mention.MentionService, redisClient *redis.Client, commentLimit time.Duration) CommentService {
	return &commentService{
		repo:           repo,
		postRepo:       postRepo,
		reactionRepo:   reactionRepo,
		mentionService: mentionService,
		redisClient:    redisClient,
		sanitizer:      bluemonday.StrictPolicy(),
		commentLimit:   commentLimit,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error) {
	if userID == uuid.Nil || postID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "comment", s.commentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "comment")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are commenting too fast, please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.ErrNotFound
	}

	if req.ParentID != nil {
		parentOK, err := s.repo.ExistsUnderPost(ctx, *req.ParentID, postID)
		if err != nil {
			return nil, err
		}
		if !parentOK {
			return nil, apperror.ErrNotFound
		}
	}

	content := s.cleanContent(req.Content)
	if content == nil && req.ImageURL == nil {
		return nil, apperror.ErrInvalidInput
	}

	comment := &entity.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  content,
		ImageURL: req.ImageURL,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// The comment row exists now; the mention sync owns its own transaction.
	if err := s.mentionService.SyncMentions(ctx, comment.ID, userID, req.Mentions); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, comment.ID, &userID)
}

func (s *commentService) GetComment(ctx context.Context, commentID uuid.UUID, userID *uuid.UUID) (*commentDto.CommentResponse, error) {
	return s.buildResponse(ctx, commentID, userID)
}

func (s *commentService) GetCommentsByPostID(ctx context.Context, postID uuid.UUID, userID *uuid.UUID, filter commentDto.CommentFilter) (*commentDto.PaginatedCommentResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.ErrNotFound
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	comments, total, err := s.repo.FindByPostID(ctx, postID, filter.ParentID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp, err := s.toResponse(ctx, c, userID)
		if err != nil {
			return nil, err
		}
		data = append(data, *resp)
	}

	return &commentDto.PaginatedCommentResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *commentService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, req commentDto.UpdateCommentRequest) (*commentDto.CommentResponse, error) {
	if userID == uuid.Nil || commentID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if comment.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	if req.Content != nil {
		comment.Content = s.cleanContent(req.Content)
	}
	if req.ImageURL != nil {
		comment.ImageURL = req.ImageURL
	} else if req.RemoveImage {
		comment.ImageURL = nil
	}

	if comment.Content == nil && comment.ImageURL == nil {
		return nil, apperror.ErrInvalidInput
	}

	// Preloaded associations must not be written back alongside the row
	comment.Mentions = nil
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}

	// Full replace: prior mentions are dropped, the new list is inserted and
	// renotified, even for users mentioned before the edit.
	if err := s.mentionService.SyncMentions(ctx, commentID, userID, req.Mentions); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, commentID, &userID)
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	if userID == uuid.Nil || commentID == uuid.Nil {
		return apperror.ErrInvalidInput
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return apperror.ErrNotFound
	}
	if comment.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.repo.Delete(ctx, commentID)
}

func (s *commentService) cleanContent(content *string) *string {
	if content == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*content)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func (s *commentService) buildResponse(ctx context.Context, commentID uuid.UUID, userID *uuid.UUID) (*commentDto.CommentResponse, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return s.toResponse(ctx, comment, userID)
}

func (s *commentService) toResponse(ctx context.Context, comment *entity.Comment, userID *uuid.UUID) (*commentDto.CommentResponse, error) {
	likes, _, err := s.reactionRepo.CountByType(ctx, entity.SubjectComment, comment.ID)
	if err != nil {
		return nil, err
	}

	replies, err := s.repo.CountReplies(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	likedByUser := false
	if userID != nil {
		reaction, err := s.reactionRepo.FindUserReaction(ctx, *userID, entity.SubjectComment, comment.ID)
		if err != nil {
			return nil, err
		}
		likedByUser = reaction != nil && *reaction == entity.ReactionLike
	}

	mentions := make([]commentDto.MentionResponse, 0, len(comment.Mentions))
	for _, m := range comment.Mentions {
		mentions = append(mentions, commentDto.MentionResponse{
			ID:     m.ID,
			UserID: m.UserID,
			User:   toAuthor(&m.User),
		})
	}

	return &commentDto.CommentResponse{
		ID:           comment.ID,
		PostID:       comment.PostID,
		ParentID:     comment.ParentID,
		Author:       toAuthor(&comment.User),
		Content:      comment.Content,
		ImageURL:     comment.ImageURL,
		Mentions:     mentions,
		LikesCount:   likes,
		RepliesCount: replies,
		LikedByUser:  likedByUser,
		CreatedAt:    comment.CreatedAt,
		UpdatedAt:    comment.UpdatedAt,
	}, nil
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
