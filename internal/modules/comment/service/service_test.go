package comment

import (
	"context"
	"testing"

	"anoa.com/kawansosial/internal/entity"
	commentDto "anoa.com/kawansosial/internal/modules/comment/dto"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	mentionRepo "anoa.com/kawansosial/internal/modules/mention/repository"
	mentionService "anoa.com/kawansosial/internal/modules/mention/service"
	notifRepo "anoa.com/kawansosial/internal/modules/notification/repository"
	notifService "anoa.com/kawansosial/internal/modules/notification/service"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
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
	db        *gorm.DB
	service   CommentService
	reactions reactionRepo.ReactionRepository
	author    *entity.User
	post      *entity.Post
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

	author := &entity.User{Username: "author", Email: "author@example.com"}
	require.NoError(t, db.Create(author).Error)

	content := "a post"
	post := &entity.Post{UserID: author.ID, Content: &content}
	require.NoError(t, db.Create(post).Error)

	comments := commentRepo.NewCommentRepository(db)
	reactions := reactionRepo.NewReactionRepository(db)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	mentions := mentionService.NewMentionService(mentionRepo.NewMentionRepository(db), comments, notifications)

	service := NewCommentService(comments, postRepo.NewPostRepository(db), reactions, mentions, nil, 0)

	return &fixture{db: db, service: service, reactions: reactions, author: author, post: post}
}

func (f *fixture) newUser(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func strPtr(s string) *string {
	return &s
}

func TestCreateCommentWithMentions(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")

	resp, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content:  strPtr("nice post @bob"),
		Mentions: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)

	require.Len(t, resp.Mentions, 1)
	assert.Equal(t, bob.ID, resp.Mentions[0].UserID)

	var notifications []entity.Notification
	require.NoError(t, f.db.Where("user_id = ?", bob.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationTag, notifications[0].Type)
	assert.Equal(t, resp.ID, notifications[0].ReferenceID)
}

func TestCreateCommentRequiresContentOrImage(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Content that sanitizes to nothing counts as missing
	_, err = f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content: strPtr("<script>alert(1)</script>"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// An image alone is enough
	resp, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		ImageURL: strPtr("https://cdn.example.com/cat.png"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Content)
	require.NotNil(t, resp.ImageURL)
}

func TestCreateCommentSanitizesContent(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content: strPtr(`hello <a href="http://evil">there</a>`),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Content)
	assert.Equal(t, "hello there", *resp.Content)
}

func TestCreateCommentMissingPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateComment(context.Background(), f.author.ID, uuid.New(), commentDto.CreateCommentRequest{
		Content: strPtr("hello"),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateReplyValidatesParent(t *testing.T) {
	f := newFixture(t)

	parent, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content: strPtr("parent"),
	})
	require.NoError(t, err)

	reply, err := f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content:  strPtr("reply"),
		ParentID: &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	// Parent must live under the same post
	unknownParent := uuid.New()
	_, err = f.service.CreateComment(context.Background(), f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content:  strPtr("orphan reply"),
		ParentID: &unknownParent,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateCommentReplacesMentions(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")
	carol := f.newUser(t, "carol")

	ctx := context.Background()
	created, err := f.service.CreateComment(ctx, f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content:  strPtr("hello @bob"),
		Mentions: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateComment(ctx, f.author.ID, created.ID, commentDto.UpdateCommentRequest{
		Content:  strPtr("hello @carol"),
		Mentions: []uuid.UUID{carol.ID},
	})
	require.NoError(t, err)

	require.Len(t, updated.Mentions, 1)
	assert.Equal(t, carol.ID, updated.Mentions[0].UserID)

	var mentionCount int64
	require.NoError(t, f.db.Model(&entity.Mention{}).Where("comment_id = ?", created.ID).Count(&mentionCount).Error)
	assert.Equal(t, int64(1), mentionCount)

	// Carol gets her tag notification from the edit
	var notifications []entity.Notification
	require.NoError(t, f.db.Where("user_id = ?", carol.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestUpdateCommentForbiddenForNonOwner(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")

	ctx := context.Background()
	created, err := f.service.CreateComment(ctx, f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content: strPtr("mine"),
	})
	require.NoError(t, err)

	_, err = f.service.UpdateComment(ctx, bob.ID, created.ID, commentDto.UpdateCommentRequest{
		Content: strPtr("now mine"),
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = f.service.DeleteComment(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDeleteCommentCascades(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")

	ctx := context.Background()
	created, err := f.service.CreateComment(ctx, f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content:  strPtr("to be deleted"),
		Mentions: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)

	_, _, err = f.reactions.Toggle(ctx, &entity.Reaction{
		SubjectKind: entity.SubjectComment,
		SubjectID:   created.ID,
		UserID:      bob.ID,
		Type:        entity.ReactionLike,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteComment(ctx, f.author.ID, created.ID))

	var count int64
	require.NoError(t, f.db.Model(&entity.Comment{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, f.db.Model(&entity.Mention{}).Where("comment_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, f.db.Model(&entity.Reaction{}).
		Where("subject_kind = ? AND subject_id = ?", entity.SubjectComment, created.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, f.db.Model(&entity.Notification{}).Where("reference_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetCommentsByPostPaginates(t *testing.T) {
	f := newFixture(t)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.service.CreateComment(ctx, f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
			Content: strPtr("comment"),
		})
		require.NoError(t, err)
	}

	resp, err := f.service.GetCommentsByPostID(ctx, f.post.ID, nil, commentDto.CommentFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(3), resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestCommentResponseCountsReactions(t *testing.T) {
	f := newFixture(t)
	bob := f.newUser(t, "bob")

	ctx := context.Background()
	created, err := f.service.CreateComment(ctx, f.author.ID, f.post.ID, commentDto.CreateCommentRequest{
		Content: strPtr("like me"),
	})
	require.NoError(t, err)

	_, _, err = f.reactions.Toggle(ctx, &entity.Reaction{
		SubjectKind: entity.SubjectComment,
		SubjectID:   created.ID,
		UserID:      bob.ID,
		Type:        entity.ReactionLike,
	})
	require.NoError(t, err)

	resp, err := f.service.GetComment(ctx, created.ID, &bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.LikesCount)
	assert.True(t, resp.LikedByUser)
}
