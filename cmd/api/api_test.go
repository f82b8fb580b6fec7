package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"VidTube.com/cmd/api/handlers"
	handler_user "VidTube.com/cmd/api/handlers/user"
	"VidTube.com/cmd/dal/daltest"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/jwt"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var jwtOnce sync.Once

func setup(t *testing.T) (*server.Hertz, *gorm.DB) {
	t.Helper()
	db := daltest.Open(t)
	jwtOnce.Do(func() {
		require.NoError(t, jwt.Init("test-secret", time.Hour, 2*time.Hour, handler_user.Login, handlers.TokenResponder{}))
	})
	return newServer(), db
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func call(t *testing.T, h *server.Hertz, method, path, token string, body interface{}) envelope {
	t.Helper()
	var reqBody *ut.Body
	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
	}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	w := ut.PerformRequest(h.Engine, method, path, reqBody, headers...)
	resp := w.Result()

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body(), &env), string(resp.Body()))
	assert.Equal(t, resp.StatusCode(), env.StatusCode)
	return env
}

func tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	token, _, err := jwt.GenerateToken(u.Identity())
	require.NoError(t, err)
	return token
}

func TestSignupAndLogin(t *testing.T) {
	h, _ := setup(t)

	env := call(t, h, http.MethodPost, "/users/signup", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, env.StatusCode, env.Message)
	assert.True(t, env.Success)
	var signup struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &signup))
	assert.Equal(t, "alice", signup.User.Username)
	assert.NotEmpty(t, signup.Token)

	env = call(t, h, http.MethodPost, "/users/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, env.StatusCode)
	assert.False(t, env.Success)

	env = call(t, h, http.MethodPost, "/users/login", "", map[string]string{"username": "alice", "password": "nope!!"})
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	env = call(t, h, http.MethodPost, "/users/login", "", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, env.StatusCode, env.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	env = call(t, h, http.MethodGet, "/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, env.StatusCode)
	var me model.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, signup.User.ID, me.ID)
}

func TestLikeOverHTTP(t *testing.T) {
	h, db := setup(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)
	token := tokenFor(t, fan)
	body := map[string]string{"video_id": fmt.Sprint(v.ID)}

	env := call(t, h, http.MethodPost, "/likes", token, body)
	require.Equal(t, http.StatusCreated, env.StatusCode, env.Message)

	env = call(t, h, http.MethodPost, "/likes", token, body)
	assert.Equal(t, http.StatusConflict, env.StatusCode)

	var stored model.Video
	daltest.Reload(t, db, &stored, v.ID)
	assert.Equal(t, int64(1), stored.Likes)

	var notices int64
	require.NoError(t, db.Model(&model.Notification{}).Where("recipient_id = ?", owner.ID).Count(&notices).Error)
	assert.Equal(t, int64(1), notices)

	env = call(t, h, http.MethodDelete, fmt.Sprintf("/likes?video_id=%d", v.ID), token, nil)
	assert.Equal(t, http.StatusOK, env.StatusCode, env.Message)
	env = call(t, h, http.MethodDelete, fmt.Sprintf("/likes?video_id=%d", v.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)

	daltest.Reload(t, db, &stored, v.ID)
	assert.Zero(t, stored.Likes)

	env = call(t, h, http.MethodPost, "/likes", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	h, _ := setup(t)
	owner := daltest.CreateUser(t, "owner")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)
	path := fmt.Sprintf("/comments/%d", v.ID)

	env := call(t, h, http.MethodPost, path, "", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.False(t, env.Success)

	env = call(t, h, http.MethodPost, path, "garbage", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	env = call(t, h, http.MethodPost, path, tokenFor(t, owner), map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusCreated, env.StatusCode, env.Message)

	// 未登录也可以读取评论
	env = call(t, h, http.MethodGet, fmt.Sprintf("/comments/video/%d", v.ID), "", nil)
	assert.Equal(t, http.StatusOK, env.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	h, _ := setup(t)
	user := daltest.CreateUser(t, "user")
	admin := daltest.CreateAdmin(t, "root")
	v := daltest.CreateVideo(t, user.ID, "clip", true)
	path := fmt.Sprintf("/admin/reconcile/videos/%d", v.ID)

	env := call(t, h, http.MethodPost, path, tokenFor(t, user), nil)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)
	assert.Equal(t, "Admin role required", env.Message)

	env = call(t, h, http.MethodPost, path, tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, env.StatusCode, env.Message)

	env = call(t, h, http.MethodPost, "/admin/reconcile/videos/abc", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
}

func TestNotFoundVideo(t *testing.T) {
	h, _ := setup(t)
	owner := daltest.CreateUser(t, "owner")
	draft := daltest.CreateVideo(t, owner.ID, "draft", false)

	env := call(t, h, http.MethodGet, fmt.Sprintf("/videos/%d", draft.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "Video not found", env.Message)

	env = call(t, h, http.MethodGet, fmt.Sprintf("/videos/%d", draft.ID), tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, env.StatusCode)
}

func TestCommentLikeRejectsVideoTarget(t *testing.T) {
	h, db := setup(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)
	token := tokenFor(t, fan)

	env := call(t, h, http.MethodPost, fmt.Sprintf("/comments/%d", v.ID), tokenFor(t, owner), map[string]string{"content": "first"})
	require.Equal(t, http.StatusCreated, env.StatusCode, env.Message)
	var comment model.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	both := map[string]string{"video_id": fmt.Sprint(v.ID), "comment_id": fmt.Sprint(comment.ID)}
	env = call(t, h, http.MethodPost, "/likes/comment", token, both)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)

	var rows int64
	require.NoError(t, db.Model(&model.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)

	env = call(t, h, http.MethodPost, "/likes/comment", token, map[string]string{"comment_id": fmt.Sprint(comment.ID)})
	assert.Equal(t, http.StatusCreated, env.StatusCode, env.Message)

	env = call(t, h, http.MethodDelete, fmt.Sprintf("/likes/comment?video_id=%d&comment_id=%d", v.ID, comment.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	env = call(t, h, http.MethodDelete, fmt.Sprintf("/likes/comment?comment_id=%d", comment.ID), token, nil)
	assert.Equal(t, http.StatusOK, env.StatusCode, env.Message)
}

func TestDraftRepliesHidden(t *testing.T) {
	h, _ := setup(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")
	draft := daltest.CreateVideo(t, owner.ID, "draft", false)
	ownerToken := tokenFor(t, owner)

	env := call(t, h, http.MethodPost, fmt.Sprintf("/comments/%d", draft.ID), ownerToken, map[string]string{"content": "draft note"})
	require.Equal(t, http.StatusCreated, env.StatusCode, env.Message)
	var comment model.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))
	path := fmt.Sprintf("/comments/reply/%d", comment.ID)

	env = call(t, h, http.MethodPost, path, ownerToken, map[string]string{"content": "secret reply"})
	require.Equal(t, http.StatusCreated, env.StatusCode, env.Message)

	env = call(t, h, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	env = call(t, h, http.MethodGet, path, tokenFor(t, fan), nil)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	env = call(t, h, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, env.StatusCode, env.Message)
}
