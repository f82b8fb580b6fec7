package service

import (
	"context"
	"sync"
	"testing"

	"VidTube.com/cmd/dal/daltest"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	alice := daltest.CreateUser(t, "alice")
	bob := daltest.CreateUser(t, "bob")

	t.Run("self notification is suppressed", func(t *testing.T) {
		assert.Nil(t, Notify(ctx, &Notice{RecipientID: alice.ID, SenderID: alice.ID, Type: constants.NotificationLike}))
	})

	t.Run("missing recipient is skipped", func(t *testing.T) {
		assert.Nil(t, Notify(ctx, &Notice{RecipientID: 424242, SenderID: alice.ID, Type: constants.NotificationLike}))
	})

	t.Run("written", func(t *testing.T) {
		n := Notify(ctx, &Notice{RecipientID: bob.ID, SenderID: alice.ID, Type: constants.NotificationComment, Content: "hi"})
		require.NotNil(t, n)
		assert.False(t, n.IsRead)
	})

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListAndMarkRead(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	alice := daltest.CreateUser(t, "alice")
	bob := daltest.CreateUser(t, "bob")
	var ids []int64
	for i := 0; i < 3; i++ {
		n := Notify(ctx, &Notice{RecipientID: bob.ID, SenderID: alice.ID, Type: constants.NotificationLike, Content: "like"})
		require.NotNil(t, n)
		ids = append(ids, n.ID)
	}

	page, err := NewNotificationService(ctx).List(bob.ID, 1, 2, false)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, int64(3), page.UnreadCount)
	assert.Equal(t, int64(2), page.TotalPages)
	require.NotNil(t, page.Notifications[0].Sender)
	assert.Equal(t, "alice", page.Notifications[0].Sender.Username)

	t.Run("mark one", func(t *testing.T) {
		_, err := NewNotificationService(ctx).MarkRead(alice.ID, ids[0])
		assert.True(t, errors.Is(err, errno.ForbiddenErr))

		_, err = NewNotificationService(ctx).MarkRead(bob.ID, 777)
		assert.True(t, errors.Is(err, errno.NotFoundErr))

		n, err := NewNotificationService(ctx).MarkRead(bob.ID, ids[0])
		require.NoError(t, err)
		assert.True(t, n.IsRead)

		page, err := NewNotificationService(ctx).List(bob.ID, 1, 10, true)
		require.NoError(t, err)
		assert.Len(t, page.Notifications, 2)
		assert.Equal(t, int64(2), page.UnreadCount)
	})

	t.Run("mark all", func(t *testing.T) {
		n, err := NewNotificationService(ctx).MarkAllRead(bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		page, err := NewNotificationService(ctx).List(bob.ID, 1, 10, false)
		require.NoError(t, err)
		assert.Zero(t, page.UnreadCount)
		assert.Len(t, page.Notifications, 3)
	})
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []*mq.NotificationEvent
}

func (p *fakePublisher) PublishNotificationEvent(_ context.Context, e *mq.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func TestQueueEmitter(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	alice := daltest.CreateUser(t, "alice")
	bob := daltest.CreateUser(t, "bob")
	videoID := int64(99)

	pub := &fakePublisher{}
	q := &QueueEmitter{Publisher: pub, Fallback: DirectEmitter{}}
	q.Emit(ctx, &Notice{RecipientID: alice.ID, SenderID: alice.ID, Type: constants.NotificationLike})
	assert.Empty(t, pub.events)

	q.Emit(ctx, &Notice{RecipientID: bob.ID, SenderID: alice.ID, Type: constants.NotificationLike,
		Content: "like", EntityType: constants.EntityVideo, EntityID: &videoID})
	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, bob.ID, event.RecipientID)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, videoID, *event.EntityID)

	// 队列侧消费后才落库
	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, EventHandler{}.HandleNotificationEvent(ctx, event))
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	t.Run("publish failure falls back to a direct write", func(t *testing.T) {
		pub.err = errors.New("channel closed")
		q.Emit(ctx, &Notice{RecipientID: bob.ID, SenderID: alice.ID, Type: constants.NotificationSubscribe})
		require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}

func TestSetEmitter(t *testing.T) {
	pub := &fakePublisher{}
	SetEmitter(&QueueEmitter{Publisher: pub})
	defer SetEmitter(DirectEmitter{})

	Emit(context.Background(), &Notice{RecipientID: 2, SenderID: 1, Type: constants.NotificationLike})
	assert.Len(t, pub.events, 1)
}
