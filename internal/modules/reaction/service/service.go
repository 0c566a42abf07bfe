package reaction

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"anoa.com/kawansosial/internal/entity"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
	reactionDto "anoa.com/kawansosial/internal/modules/reaction/dto"
	reactionRepo "anoa.com/kawansosial/internal/modules/reaction/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"anoa.com/kawansosial/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const countsCacheTTL = 7 * 24 * time.Hour

type ReactionService interface {
	SetReaction(ctx context.Context, userID uuid.UUID, req reactionDto.SetReactionRequest) (*dto.ReactionsResponse, error)
	GetReactions(ctx context.Context, userID *uuid.UUID, kind string, subjectID uuid.UUID) (*dto.ReactionsResponse, error)
}

type reactionService struct {
	repo        reactionRepo.ReactionRepository
	postRepo    postRepo.PostRepository
	commentRepo commentRepo.CommentRepository
	redisClient *redis.Client
}

func NewReactionService(repo reactionRepo.ReactionRepository, postRepo postRepo.PostRepository, commentRepo commentRepo.CommentRepository, redisClient *redis.Client) ReactionService {
	return &reactionService{
		repo:        repo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		redisClient: redisClient,
	}
}

// SetReaction applies one step of the per-(subject, user) state machine:
// no row + request -> insert, same type -> delete (toggle off), opposite
// type -> update. Counts in the response are always recounted from the
// reactions table, never read from the cache.
func (s *reactionService) SetReaction(ctx context.Context, userID uuid.UUID, req reactionDto.SetReactionRequest) (*dto.ReactionsResponse, error) {
	if userID == uuid.Nil || req.SubjectID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}
	if !entity.ValidSubjectKind(req.SubjectKind) {
		return nil, apperror.ErrInvalidInput
	}

	reqType := req.Type
	if reqType == "" {
		reqType = entity.ReactionLike
	}
	if !entity.ValidReactionType(reqType) {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.subjectExists(ctx, req.SubjectKind, req.SubjectID); err != nil {
		return nil, err
	}

	reaction := &entity.Reaction{
		SubjectKind: req.SubjectKind,
		SubjectID:   req.SubjectID,
		UserID:      userID,
		Type:        reqType,
	}

	_, newType, err := s.repo.Toggle(ctx, reaction)
	if err != nil {
		return nil, err
	}

	likes, dislikes, err := s.repo.CountByType(ctx, req.SubjectKind, req.SubjectID)
	if err != nil {
		return nil, err
	}

	// Drop the cached counts; the read path rebuilds them lazily.
	s.invalidateCounts(ctx, req.SubjectKind, req.SubjectID)

	resp := &dto.ReactionsResponse{
		LikesCount:    likes,
		DislikesCount: dislikes,
	}
	if newType != "" {
		resp.Reaction = &newType
	}
	return resp, nil
}

func (s *reactionService) GetReactions(ctx context.Context, userID *uuid.UUID, kind string, subjectID uuid.UUID) (*dto.ReactionsResponse, error) {
	if subjectID == uuid.Nil || !entity.ValidSubjectKind(kind) {
		return nil, apperror.ErrInvalidInput
	}

	likes, dislikes, cacheHit := s.cachedCounts(ctx, kind, subjectID)
	if !cacheHit {
		var err error
		likes, dislikes, err = s.repo.CountByType(ctx, kind, subjectID)
		if err != nil {
			return nil, err
		}
		s.storeCounts(ctx, kind, subjectID, likes, dislikes)
	}

	resp := &dto.ReactionsResponse{
		LikesCount:    likes,
		DislikesCount: dislikes,
	}

	if userID != nil {
		reaction, err := s.repo.FindUserReaction(ctx, *userID, kind, subjectID)
		if err != nil {
			return nil, err
		}
		resp.Reaction = reaction
	}

	return resp, nil
}

func (s *reactionService) subjectExists(ctx context.Context, kind string, subjectID uuid.UUID) error {
	var (
		exists bool
		err    error
	)
	switch kind {
	case entity.SubjectPost:
		exists, err = s.postRepo.Exists(ctx, subjectID)
	case entity.SubjectComment:
		exists, err = s.commentRepo.Exists(ctx, subjectID)
	}
	if err != nil {
		return err
	}
	if !exists {
		return apperror.ErrNotFound
	}
	return nil
}

func countsKey(kind string, subjectID uuid.UUID) string {
	return fmt.Sprintf("reactions:counts:%s:%s", kind, subjectID.String())
}

func (s *reactionService) invalidateCounts(ctx context.Context, kind string, subjectID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, countsKey(kind, subjectID)).Err(); err != nil {
		// Data is already consistent in the DB, the cache just goes stale-free later
		log.Printf("failed to invalidate reaction counts cache: %v", err)
	}
}

func (s *reactionService) cachedCounts(ctx context.Context, kind string, subjectID uuid.UUID) (int64, int64, bool) {
	if s.redisClient == nil {
		return 0, 0, false
	}

	val, err := s.redisClient.HGetAll(ctx, countsKey(kind, subjectID)).Result()
	if err != nil || len(val) == 0 {
		return 0, 0, false
	}

	likes, _ := strconv.ParseInt(val[entity.ReactionLike], 10, 64)
	dislikes, _ := strconv.ParseInt(val[entity.ReactionDislike], 10, 64)
	return likes, dislikes, true
}

func (s *reactionService) storeCounts(ctx context.Context, kind string, subjectID uuid.UUID, likes, dislikes int64) {
	if s.redisClient == nil {
		return
	}

	key := countsKey(kind, subjectID)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, entity.ReactionLike, likes, entity.ReactionDislike, dislikes)
	pipe.Expire(ctx, key, countsCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("failed to store reaction counts cache: %v", err)
	}
}
