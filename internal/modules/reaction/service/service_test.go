package reaction

import (
	"context"
	"testing"

	"anoa.com/kawansosial/internal/entity"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
	reactionDto "anoa.com/kawansosial/internal/modules/reaction/dto"
	reactionRepo "anoa.com/kawansosial/internal/modules/reaction/repository"
	"anoa.com/kawansosial/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db      *gorm.DB
	service ReactionService
	user    *entity.User
	post    *entity.Post
	comment *entity.Comment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Post{},
		&entity.Comment{},
		&entity.Mention{},
		&entity.Reaction{},
		&entity.Notification{},
	))

	user := &entity.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(user).Error)

	content := "hello world"
	post := &entity.Post{UserID: user.ID, Content: &content}
	require.NoError(t, db.Create(post).Error)

	comment := &entity.Comment{PostID: post.ID, UserID: user.ID, Content: &content}
	require.NoError(t, db.Create(comment).Error)

	service := NewReactionService(
		reactionRepo.NewReactionRepository(db),
		postRepo.NewPostRepository(db),
		commentRepo.NewCommentRepository(db),
		nil,
	)

	return &fixture{db: db, service: service, user: user, post: post, comment: comment}
}

func (f *fixture) newUser(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) set(t *testing.T, userID uuid.UUID, kind string, subjectID uuid.UUID, reactionType string) *setResult {
	t.Helper()
	resp, err := f.service.SetReaction(context.Background(), userID, reactionDto.SetReactionRequest{
		SubjectKind: kind,
		SubjectID:   subjectID,
		Type:        reactionType,
	})
	require.NoError(t, err)
	return &setResult{resp.Reaction, resp.LikesCount, resp.DislikesCount}
}

type setResult struct {
	reaction *string
	likes    int64
	dislikes int64
}

func TestSetReactionInsert(t *testing.T) {
	f := newFixture(t)

	res := f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)

	require.NotNil(t, res.reaction)
	assert.Equal(t, entity.ReactionLike, *res.reaction)
	assert.Equal(t, int64(1), res.likes)
	assert.Equal(t, int64(0), res.dislikes)
}

func TestSetReactionToggleOff(t *testing.T) {
	f := newFixture(t)

	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	res := f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)

	assert.Nil(t, res.reaction)
	assert.Equal(t, int64(0), res.likes)
	assert.Equal(t, int64(0), res.dislikes)

	var count int64
	require.NoError(t, f.db.Model(&entity.Reaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSetReactionSwitch(t *testing.T) {
	f := newFixture(t)

	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	res := f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionDislike)

	require.NotNil(t, res.reaction)
	assert.Equal(t, entity.ReactionDislike, *res.reaction)
	assert.Equal(t, int64(0), res.likes)
	assert.Equal(t, int64(1), res.dislikes)

	// A switch must never leave both rows behind
	var count int64
	require.NoError(t, f.db.Model(&entity.Reaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetReactionDefaultsToLike(t *testing.T) {
	f := newFixture(t)

	res := f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, "")

	require.NotNil(t, res.reaction)
	assert.Equal(t, entity.ReactionLike, *res.reaction)
}

func TestSetReactionDislikeOnFreshSubject(t *testing.T) {
	f := newFixture(t)

	res := f.set(t, f.user.ID, entity.SubjectComment, f.comment.ID, entity.ReactionDislike)

	require.NotNil(t, res.reaction)
	assert.Equal(t, entity.ReactionDislike, *res.reaction)
	assert.Equal(t, int64(0), res.likes)
	assert.Equal(t, int64(1), res.dislikes)
}

func TestSetReactionCountsAllUsers(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")
	carol := f.newUser(t, "carol")

	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	f.set(t, bob.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	res := f.set(t, carol.ID, entity.SubjectPost, f.post.ID, entity.ReactionDislike)

	assert.Equal(t, int64(2), res.likes)
	assert.Equal(t, int64(1), res.dislikes)
}

func TestSetReactionSubjectKindsAreIndependent(t *testing.T) {
	f := newFixture(t)

	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	res := f.set(t, f.user.ID, entity.SubjectComment, f.comment.ID, entity.ReactionLike)

	// The comment reaction is its own row, the post like is untouched
	assert.Equal(t, int64(1), res.likes)

	postRes, err := f.service.GetReactions(context.Background(), &f.user.ID, entity.SubjectPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), postRes.LikesCount)
	require.NotNil(t, postRes.Reaction)
	assert.Equal(t, entity.ReactionLike, *postRes.Reaction)
}

func TestSetReactionMissingSubject(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SetReaction(context.Background(), f.user.ID, reactionDto.SetReactionRequest{
		SubjectKind: entity.SubjectPost,
		SubjectID:   uuid.New(),
		Type:        entity.ReactionLike,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetReactionInvalidInput(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		userID uuid.UUID
		req    reactionDto.SetReactionRequest
	}{
		{
			name:   "nil user",
			userID: uuid.Nil,
			req:    reactionDto.SetReactionRequest{SubjectKind: entity.SubjectPost, SubjectID: f.post.ID},
		},
		{
			name:   "nil subject",
			userID: f.user.ID,
			req:    reactionDto.SetReactionRequest{SubjectKind: entity.SubjectPost},
		},
		{
			name:   "bad kind",
			userID: f.user.ID,
			req:    reactionDto.SetReactionRequest{SubjectKind: "thread", SubjectID: f.post.ID},
		},
		{
			name:   "bad type",
			userID: f.user.ID,
			req:    reactionDto.SetReactionRequest{SubjectKind: entity.SubjectPost, SubjectID: f.post.ID, Type: "love"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.SetReaction(context.Background(), tc.userID, tc.req)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestGetReactionsWithoutUser(t *testing.T) {
	f := newFixture(t)

	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)

	resp, err := f.service.GetReactions(context.Background(), nil, entity.SubjectPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.LikesCount)
	assert.Nil(t, resp.Reaction)
}

func TestGetReactionsEmptySubject(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.GetReactions(context.Background(), &f.user.ID, entity.SubjectPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.LikesCount)
	assert.Equal(t, int64(0), resp.DislikesCount)
	assert.Nil(t, resp.Reaction)
}

func TestToggleSequenceEndsWhereItStarted(t *testing.T) {
	f := newFixture(t)

	// like -> dislike -> dislike(off) -> like leaves exactly one like
	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)
	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionDislike)
	f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionDislike)
	res := f.set(t, f.user.ID, entity.SubjectPost, f.post.ID, entity.ReactionLike)

	require.NotNil(t, res.reaction)
	assert.Equal(t, entity.ReactionLike, *res.reaction)
	assert.Equal(t, int64(1), res.likes)
	assert.Equal(t, int64(0), res.dislikes)
}
