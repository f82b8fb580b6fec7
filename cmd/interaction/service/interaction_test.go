package service

import (
	"context"
	"fmt"
	"testing"

	"VidTube.com/cmd/dal/daltest"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func idStr(id int64) string {
	return fmt.Sprintf("%d", id)
}

func notificationsFor(t *testing.T, db *gorm.DB, recipientID int64) []model.Notification {
	t.Helper()
	var rows []model.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipientID).Find(&rows).Error)
	return rows
}

func videoOf(t *testing.T, db *gorm.DB, id int64) model.Video {
	t.Helper()
	var v model.Video
	daltest.Reload(t, db, &v, id)
	return v
}

func TestLikeRequiresExactlyOneTarget(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	u := daltest.CreateUser(t, "alice")
	v := daltest.CreateVideo(t, u.ID, "clip", true)

	cases := map[string]*LikeRequest{
		"neither": {},
		"both":    {VideoID: idStr(v.ID), CommentID: "1"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLikeService(ctx).Like(u.ID, req)
			assert.True(t, errors.Is(err, errno.ParamErr))
		})
	}

	var n int64
	require.NoError(t, db.Model(&model.Like{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Zero(t, videoOf(t, db, v.ID).Likes)
}

func TestLikeVideoTwice(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	like, err := NewLikeService(ctx).Like(fan.ID, &LikeRequest{VideoID: idStr(v.ID)})
	require.NoError(t, err)
	assert.NotZero(t, like.ID)
	assert.Equal(t, int64(1), videoOf(t, db, v.ID).Likes)

	_, err = NewLikeService(ctx).Like(fan.ID, &LikeRequest{VideoID: idStr(v.ID)})
	assert.True(t, errors.Is(err, errno.ConflictErr))
	assert.Equal(t, int64(1), videoOf(t, db, v.ID).Likes)

	notes := notificationsFor(t, db, owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, fan.ID, notes[0].SenderID)
	assert.Equal(t, constants.NotificationLike, notes[0].Type)
}

func TestSelfLikeIsNotNotified(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	u := daltest.CreateUser(t, "alice")
	v := daltest.CreateVideo(t, u.ID, "clip", true)

	_, err := NewLikeService(ctx).LikeVideo(u.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), videoOf(t, db, v.ID).Likes)
	assert.Empty(t, notificationsFor(t, db, u.ID))
}

func TestUnlikeNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	_, err := NewLikeService(ctx).LikeVideo(fan.ID, v.ID)
	require.NoError(t, err)
	require.NoError(t, NewLikeService(ctx).UnlikeVideo(fan.ID, v.ID))

	for i := 0; i < 3; i++ {
		err = NewLikeService(ctx).UnlikeVideo(fan.ID, v.ID)
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	}
	assert.Zero(t, videoOf(t, db, v.ID).Likes)
}

func TestLikeUnpublishedVideo(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "draft", false)

	_, err := NewLikeService(ctx).LikeVideo(fan.ID, v.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	// 作者自己可以看到草稿
	_, err = NewLikeService(ctx).LikeVideo(owner.ID, v.ID)
	assert.NoError(t, err)
}

func TestLikeComment(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)
	c, err := NewCommentService(ctx).CreateComment(owner.ID, v.ID, &CommentRequest{Content: "first"})
	require.NoError(t, err)

	_, err = NewLikeService(ctx).Like(fan.ID, &LikeRequest{CommentID: idStr(c.ID)})
	require.NoError(t, err)
	_, err = NewLikeService(ctx).LikeComment(fan.ID, c.ID)
	assert.True(t, errors.Is(err, errno.ConflictErr))

	var got model.Comment
	daltest.Reload(t, db, &got, c.ID)
	assert.Equal(t, int64(1), got.Likes)
	assert.Zero(t, videoOf(t, db, v.ID).Likes)

	require.NoError(t, NewLikeService(ctx).Unlike(fan.ID, &LikeRequest{CommentID: idStr(c.ID)}))
	daltest.Reload(t, db, &got, c.ID)
	assert.Zero(t, got.Likes)
}

func TestDraftVideoThreadsStayHidden(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	draft := daltest.CreateVideo(t, owner.ID, "draft", false)

	c, err := NewCommentService(ctx).CreateComment(owner.ID, draft.ID, &CommentRequest{Content: "note to self"})
	require.NoError(t, err)
	_, err = NewReplyService(ctx).AppendReply(owner.ID, c.ID, &CommentRequest{Content: "secret reply"})
	require.NoError(t, err)

	_, err = NewLikeService(ctx).LikeComment(fan.ID, c.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
	var got model.Comment
	daltest.Reload(t, db, &got, c.ID)
	assert.Zero(t, got.Likes)
	assert.Empty(t, notificationsFor(t, db, owner.ID))

	for _, viewer := range []int64{0, fan.ID} {
		_, err = NewReplyService(ctx).ListReplies(c.ID, viewer, 1, 10)
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	}

	page, err := NewReplyService(ctx).ListReplies(c.ID, owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Replies, 1)
	assert.Equal(t, "secret reply", page.Replies[0].Content)

	// 作者自己点赞不产生通知
	_, err = NewLikeService(ctx).LikeComment(owner.ID, c.ID)
	assert.NoError(t, err)
}

func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	t.Run("invalid content", func(t *testing.T) {
		for _, content := range []string{"", "   ", "aaaaaaaaaaaaaaa"} {
			_, err := NewCommentService(ctx).CreateComment(fan.ID, v.ID, &CommentRequest{Content: content})
			assert.True(t, errors.Is(err, errno.ParamErr), content)
		}
	})

	c, err := NewCommentService(ctx).CreateComment(fan.ID, v.ID, &CommentRequest{Content: "  nice  "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Content)
	assert.Equal(t, int64(1), videoOf(t, db, v.ID).Comments)

	notes := notificationsFor(t, db, owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, constants.NotificationComment, notes[0].Type)
	assert.Contains(t, notes[0].Content, "fan")

	t.Run("only the author can edit", func(t *testing.T) {
		_, err := NewCommentService(ctx).UpdateComment(owner.Identity(), c.ID, &CommentRequest{Content: "hacked"})
		assert.True(t, errors.Is(err, errno.ForbiddenErr))

		var got model.Comment
		daltest.Reload(t, db, &got, c.ID)
		assert.Equal(t, "nice", got.Content)

		updated, err := NewCommentService(ctx).UpdateComment(fan.Identity(), c.ID, &CommentRequest{Content: "very nice"})
		require.NoError(t, err)
		assert.Equal(t, "very nice", updated.Content)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := NewCommentService(ctx).UpdateComment(fan.Identity(), 42, &CommentRequest{Content: "x"})
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})

	t.Run("list newest first with reply counts", func(t *testing.T) {
		second, err := NewCommentService(ctx).CreateComment(owner.ID, v.ID, &CommentRequest{Content: "thanks"})
		require.NoError(t, err)
		_, err = NewReplyService(ctx).AppendReply(owner.ID, c.ID, &CommentRequest{Content: "glad you liked it"})
		require.NoError(t, err)

		page, err := NewCommentService(ctx).ListVideoComments(v.ID, 0, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Comments, 2)
		assert.Equal(t, int64(2), page.TotalCount)
		assert.Equal(t, second.ID, page.Comments[0].ID)
		assert.Equal(t, int64(1), page.Comments[1].ReplyCount)
		require.NotNil(t, page.Comments[1].Author)
		assert.Equal(t, "fan", page.Comments[1].Author.Username)
	})
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	admin := daltest.CreateAdmin(t, "root")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	parent, err := NewCommentService(ctx).CreateComment(fan.ID, v.ID, &CommentRequest{Content: "parent"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = NewReplyService(ctx).AppendReply(owner.ID, parent.ID, &CommentRequest{Content: fmt.Sprintf("reply %d", i)})
		require.NoError(t, err)
	}
	_, err = NewLikeService(ctx).LikeComment(owner.ID, parent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), videoOf(t, db, v.ID).Comments)

	_, err = NewCommentService(ctx).DeleteComment(owner.Identity(), parent.ID)
	assert.True(t, errors.Is(err, errno.ForbiddenErr))

	n, err := NewCommentService(ctx).DeleteComment(admin.Identity(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Zero(t, videoOf(t, db, v.ID).Comments)

	var left int64
	require.NoError(t, db.Model(&model.CommentReply{}).Count(&left).Error)
	assert.Zero(t, left)
	require.NoError(t, db.Model(&model.Like{}).Where("comment_id = ?", parent.ID).Count(&left).Error)
	assert.Zero(t, left)
}

func TestReplyOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	parent, err := NewCommentService(ctx).CreateComment(owner.ID, v.ID, &CommentRequest{Content: "parent"})
	require.NoError(t, err)
	var replies []*model.Comment
	for _, content := range []string{"r1", "r2", "r3"} {
		r, err := NewReplyService(ctx).AppendReply(fan.ID, parent.ID, &CommentRequest{Content: content})
		require.NoError(t, err)
		replies = append(replies, r)
	}

	page, err := NewReplyService(ctx).ListReplies(parent.ID, 0, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Replies, 2)
	assert.Equal(t, replies[0].ID, page.Replies[0].ID)
	assert.Equal(t, replies[1].ID, page.Replies[1].ID)
	assert.Equal(t, int64(3), page.TotalReplies)
	assert.Equal(t, int64(2), page.TotalPages)

	page, err = NewReplyService(ctx).ListReplies(parent.ID, 0, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Replies, 1)
	assert.Equal(t, "r3", page.Replies[0].Content)

	t.Run("missing bodies are dropped", func(t *testing.T) {
		// 只删除回复本身，序列保持不变
		require.NoError(t, db.Delete(&model.Comment{}, replies[1].ID).Error)
		page, err := NewReplyService(ctx).ListReplies(parent.ID, 0, 1, 2)
		require.NoError(t, err)
		require.Len(t, page.Replies, 1)
		assert.Equal(t, replies[0].ID, page.Replies[0].ID)
		assert.Equal(t, int64(3), page.TotalReplies)
	})

	t.Run("replying to a reply", func(t *testing.T) {
		_, err := NewReplyService(ctx).AppendReply(owner.ID, replies[0].ID, &CommentRequest{Content: "nested"})
		assert.True(t, errors.Is(err, errno.ParamErr))
	})

	t.Run("reply notification goes to the parent author", func(t *testing.T) {
		notes := notificationsFor(t, db, owner.ID)
		var replyNotes int
		for _, n := range notes {
			if n.Type == constants.NotificationReply {
				replyNotes++
				require.NotNil(t, n.EntityID)
				assert.Equal(t, parent.ID, *n.EntityID)
			}
		}
		assert.Equal(t, 3, replyNotes)
	})
}

func TestReconcileRepairsDrift(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	_, err := NewLikeService(ctx).LikeVideo(fan.ID, v.ID)
	require.NoError(t, err)
	c, err := NewCommentService(ctx).CreateComment(fan.ID, v.ID, &CommentRequest{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.Video{}).Where("id = ?", v.ID).
		Updates(map[string]interface{}{"likes": 7, "comments": 0}).Error)
	require.NoError(t, db.Model(&model.Comment{}).Where("id = ?", c.ID).Update("likes", 3).Error)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", owner.ID).Update("subscriber_count", 5).Error)

	drifts, err := NewReconcileService(ctx).ReconcileVideo(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, countRepaired(drifts...))
	got := videoOf(t, db, v.ID)
	assert.Equal(t, int64(1), got.Likes)
	assert.Equal(t, int64(1), got.Comments)

	res, err := NewReconcileService(ctx).Sweep(1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Videos)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 1, res.Repaired)

	var u model.User
	daltest.Reload(t, db, &u, owner.ID)
	assert.Zero(t, u.SubscriberCount)

	_, err = NewReconcileService(ctx).ReconcileVideo(12345)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
}
