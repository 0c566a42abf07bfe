package friendship

import (
	"context"
	"testing"

	"anoa.com/kawansosial/internal/entity"
	friendshipDto "anoa.com/kawansosial/internal/modules/friendship/dto"
	friendshipRepo "anoa.com/kawansosial/internal/modules/friendship/repository"
	notifRepo "anoa.com/kawansosial/internal/modules/notification/repository"
	notifService "anoa.com/kawansosial/internal/modules/notification/service"
	userRepo "anoa.com/kawansosial/internal/modules/user/repository"
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
	service FriendshipService
	alice   *entity.User
	bob     *entity.User
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
		&entity.Friendship{},
		&entity.Notification{},
	))

	alice := &entity.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(alice).Error)
	bob := &entity.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, db.Create(bob).Error)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	service := NewFriendshipService(
		friendshipRepo.NewFriendshipRepository(db),
		userRepo.NewUserRepository(db),
		notificationSvc,
	)

	return &fixture{db: db, service: service, alice: alice, bob: bob}
}

func (f *fixture) newUser(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) sendRequest(t *testing.T, from, to uuid.UUID) *entity.Friendship {
	t.Helper()
	friendship, err := f.service.SendRequest(context.Background(), from, friendshipDto.SendFriendRequestRequest{AddresseeID: to})
	require.NoError(t, err)
	return friendship
}

func TestSendRequestCreatesPendingAndNotifies(t *testing.T) {
	f := newFixture(t)

	friendship := f.sendRequest(t, f.alice.ID, f.bob.ID)
	assert.Equal(t, entity.FriendshipPending, friendship.Status)

	var notifications []entity.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.bob.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, entity.NotificationFriendRequest, notifications[0].Type)
	assert.Equal(t, f.alice.ID, notifications[0].SenderID)
	assert.Equal(t, friendship.ID, notifications[0].ReferenceID)
}

func TestSendRequestRejectsSelfAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.SendRequest(ctx, f.alice.ID, friendshipDto.SendFriendRequestRequest{AddresseeID: f.alice.ID})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	f.sendRequest(t, f.alice.ID, f.bob.ID)

	_, err = f.service.SendRequest(ctx, f.alice.ID, friendshipDto.SendFriendRequestRequest{AddresseeID: f.bob.ID})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	// The reverse direction hits the same edge
	_, err = f.service.SendRequest(ctx, f.bob.ID, friendshipDto.SendFriendRequestRequest{AddresseeID: f.alice.ID})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestSendRequestUnknownAddressee(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SendRequest(context.Background(), f.alice.ID, friendshipDto.SendFriendRequestRequest{AddresseeID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAcceptRequestMakesFriendsBothWays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	friendship := f.sendRequest(t, f.alice.ID, f.bob.ID)
	require.NoError(t, f.service.AcceptRequest(ctx, f.bob.ID, friendship.ID))

	for _, u := range []*entity.User{f.alice, f.bob} {
		friends, err := f.service.GetFriends(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, friends, 1)
	}

	aliceFriends, err := f.service.GetFriends(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, aliceFriends[0].User.ID)
}

func TestAcceptRequestOnlyByAddressee(t *testing.T) {
	f := newFixture(t)
	carol := f.newUser(t, "carol")
	ctx := context.Background()

	friendship := f.sendRequest(t, f.alice.ID, f.bob.ID)

	err := f.service.AcceptRequest(ctx, carol.ID, friendship.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// The requester can't accept their own request either
	err = f.service.AcceptRequest(ctx, f.alice.ID, friendship.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRejectRequestDeletesEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	friendship := f.sendRequest(t, f.alice.ID, f.bob.ID)
	require.NoError(t, f.service.RejectRequest(ctx, f.bob.ID, friendship.ID))

	var count int64
	require.NoError(t, f.db.Model(&entity.Friendship{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// A fresh request is possible after rejection
	f.sendRequest(t, f.alice.ID, f.bob.ID)
}

func TestCancelRequestOnlyByRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sendRequest(t, f.alice.ID, f.bob.ID)

	err := f.service.CancelRequest(ctx, f.bob.ID, f.alice.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.service.CancelRequest(ctx, f.alice.ID, f.bob.ID))

	pending, err := f.service.GetPendingRequests(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUnfriendRemovesAcceptedEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	friendship := f.sendRequest(t, f.alice.ID, f.bob.ID)
	require.NoError(t, f.service.AcceptRequest(ctx, f.bob.ID, friendship.ID))

	require.NoError(t, f.service.Unfriend(ctx, f.alice.ID, f.bob.ID))

	friends, err := f.service.GetFriends(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// Unfriending again finds nothing
	err = f.service.Unfriend(ctx, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetPendingRequestsListsIncomingOnly(t *testing.T) {
	f := newFixture(t)
	carol := f.newUser(t, "carol")
	dave := f.newUser(t, "dave")
	ctx := context.Background()

	f.sendRequest(t, f.alice.ID, f.bob.ID)
	f.sendRequest(t, carol.ID, f.bob.ID)
	f.sendRequest(t, f.bob.ID, dave.ID) // outgoing, must not appear

	pending, err := f.service.GetPendingRequests(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, p := range pending {
		assert.Equal(t, entity.FriendshipPending, p.Status)
		assert.NotEqual(t, dave.ID, p.Requester.ID)
	}
}

func TestGetSuggestionsExcludesExistingEdges(t *testing.T) {
	f := newFixture(t)
	carol := f.newUser(t, "carol")
	dave := f.newUser(t, "dave")
	ctx := context.Background()

	f.sendRequest(t, f.alice.ID, f.bob.ID)

	suggestions, err := f.service.GetSuggestions(ctx, f.alice.ID, 10)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(suggestions))
	for _, s := range suggestions {
		ids[s.ID] = true
	}
	assert.False(t, ids[f.alice.ID])
	assert.False(t, ids[f.bob.ID])
	assert.True(t, ids[carol.ID])
	assert.True(t, ids[dave.ID])
}
