package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"VidTube.com/cmd/dal/daltest"
	"VidTube.com/cmd/model"
	relationdb "VidTube.com/cmd/relation/dal/db"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)

	bad := []*SignupRequest{
		{Username: "ab", Email: "a@b.co", Password: "secret1"},
		{Username: "alice", Email: "not-an-email", Password: "secret1"},
		{Username: "alice", Email: "alice@example.com", Password: "short"},
	}
	for _, req := range bad {
		_, err := NewUserService(ctx).Signup(req)
		assert.True(t, errors.Is(err, errno.ParamErr), "%+v", req)
	}

	user, err := NewUserService(ctx).Signup(&SignupRequest{
		Username: " Alice ",
		Email:    "Alice@Example.com",
		Password: "secret1",
		FullName: "Alice A",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, constants.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = NewUserService(ctx).Signup(&SignupRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, errno.ConflictErr))
	_, err = NewUserService(ctx).Signup(&SignupRequest{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, errno.ConflictErr))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	user, err := NewUserService(ctx).Signup(&SignupRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, req := range []*LoginRequest{
		{Username: "bob", Password: "secret1"},
		{Email: "BOB@example.com", Password: "secret1"},
		{Login: "bob@example.com", Password: "secret1"},
	} {
		id, err := NewUserService(ctx).Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id.ID)
		assert.Equal(t, constants.RoleUser, id.Role)
	}

	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Username: "bob", Password: "wrong!"})
	assert.True(t, errors.Is(err, errno.AuthErr))
	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Username: "nobody", Password: "secret1"})
	assert.True(t, errors.Is(err, errno.AuthErr))
	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Password: "secret1"})
	assert.True(t, errors.Is(err, errno.ParamErr))
}

type staticProvider struct {
	ext *ExternalIdentity
}

func (p staticProvider) Name() string { return "static" }

func (p staticProvider) Resolve(_ context.Context, login, secret string) (*ExternalIdentity, error) {
	if secret != "ok" {
		return nil, fmt.Errorf("rejected %s", login)
	}
	return p.ext, nil
}

func TestAuthenticateExternal(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	RegisterProvider(staticProvider{ext: &ExternalIdentity{Email: "Carol@Example.com", Username: "Carol"}})

	_, err := NewUserService(ctx).Authenticate(&LoginRequest{Provider: "missing", Login: "carol", Password: "ok"})
	assert.True(t, errors.Is(err, errno.ParamErr))
	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Provider: "static", Login: "carol", Password: "no"})
	assert.True(t, errors.Is(err, errno.AuthErr))

	first, err := NewUserService(ctx).Authenticate(&LoginRequest{Provider: "static", Login: "carol", Password: "ok"})
	require.NoError(t, err)
	second, err := NewUserService(ctx).Authenticate(&LoginRequest{Provider: "static", Login: "carol", Password: "ok"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	u, err := db.GetUserByLogin(ctx, "carol@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "carol", u.Username)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	taken := daltest.CreateUser(t, "taken")
	user, err := NewUserService(ctx).Signup(&SignupRequest{Username: "dave", Email: "dave@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = NewUserService(ctx).UpdateProfile(user.ID, &UpdateProfileRequest{})
	assert.True(t, errors.Is(err, errno.ParamErr))

	badEmail := "nope"
	_, err = NewUserService(ctx).UpdateProfile(user.ID, &UpdateProfileRequest{Email: &badEmail})
	assert.True(t, errors.Is(err, errno.ParamErr))

	dup := taken.Email
	_, err = NewUserService(ctx).UpdateProfile(user.ID, &UpdateProfileRequest{Email: &dup})
	assert.True(t, errors.Is(err, errno.ConflictErr))

	name, bio := "  Dave D ", "hello"
	got, err := NewUserService(ctx).UpdateProfile(user.ID, &UpdateProfileRequest{FullName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Dave D", got.FullName)
	assert.Equal(t, "hello", got.Bio)

	err = NewUserService(ctx).ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "wrong!", NewPassword: "secret2"})
	assert.True(t, errors.Is(err, errno.ParamErr))
	err = NewUserService(ctx).ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "secret1", NewPassword: "abc"})
	assert.True(t, errors.Is(err, errno.ParamErr))
	require.NoError(t, NewUserService(ctx).ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))

	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Username: "dave", Password: "secret1"})
	assert.True(t, errors.Is(err, errno.AuthErr))
	_, err = NewUserService(ctx).Authenticate(&LoginRequest{Username: "dave", Password: "secret2"})
	assert.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	require.NoError(t, relationdb.CreateSubscription(ctx, &model.Subscription{
		SubscriberID:         fan.ID,
		ChannelID:            owner.ID,
		NotificationsEnabled: true,
	}))

	p, err := NewUserService(ctx).GetProfile("OWNER", fan.ID)
	require.NoError(t, err)
	assert.True(t, p.IsSubscribed)
	assert.Equal(t, int64(1), p.SubscriberCount)
	assert.Zero(t, p.SubscribedToCount)

	p, err = NewUserService(ctx).GetProfile("fan", 0)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)
	assert.Equal(t, int64(1), p.SubscribedToCount)

	_, err = NewUserService(ctx).GetProfile("ghost", 0)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	u := daltest.CreateUser(t, "viewer")
	first := daltest.CreateVideo(t, u.ID, "first", true)
	second := daltest.CreateVideo(t, u.ID, "second", true)

	now := time.Now()
	require.NoError(t, db.RecordWatch(ctx, u.ID, first.ID, now.Add(-time.Hour)))
	require.NoError(t, db.RecordWatch(ctx, u.ID, second.ID, now.Add(-time.Minute)))
	// 再次观看只刷新时间
	require.NoError(t, db.RecordWatch(ctx, u.ID, first.ID, now))

	page, err := NewUserService(ctx).History(u.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)
	require.Len(t, page.Videos, 2)
	assert.Equal(t, first.ID, page.Videos[0].ID)
	assert.Equal(t, second.ID, page.Videos[1].ID)

	empty, err := NewUserService(ctx).History(daltest.CreateUser(t, "nobody").ID, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Videos)
	assert.Zero(t, empty.TotalCount)
}
