package user

import (
	"context"
	"time"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/service"
	"VidTube.com/pkg/jwt"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type signupData struct {
	User   *model.User `json:"user"`
	Token  string      `json:"token,omitempty"`
	Expire string      `json:"expire,omitempty"`
}

// Signup 注册成功后直接签发token
func Signup(ctx context.Context, c *app.RequestContext) {
	var req service.SignupRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	user, err := service.NewUserService(ctx).Signup(&req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	data := signupData{User: user}
	token, expire, err := jwt.GenerateToken(user.Identity())
	if err != nil {
		hlog.CtxWarnf(ctx, "issue token for new user %d: %v", user.ID, err)
	} else {
		data.Token, data.Expire = token, expire.Format(time.RFC3339)
	}
	handlers.SendCreated(c, "User registered successfully", data)
}

// Login 供jwt中间件调用的凭证校验
func Login(ctx context.Context, c *app.RequestContext) (*model.Identity, error) {
	var req service.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		return nil, handlers.BindErr(err)
	}
	return service.NewUserService(ctx).Authenticate(&req)
}

func GetProfile(ctx context.Context, c *app.RequestContext) {
	profile, err := service.NewUserService(ctx).GetProfile(c.Param("username"), authfunc.ViewerID(c))
	handlers.SendResponse(c, err, profile)
}

func GetMe(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	user, err := service.NewUserService(ctx).GetMe(identity.ID)
	handlers.SendResponse(c, err, user)
}

func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	user, err := service.NewUserService(ctx).UpdateProfile(identity.ID, &req)
	handlers.SendResponse(c, err, user)
}

func ChangePassword(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.ChangePasswordRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	if err := service.NewUserService(ctx).ChangePassword(identity.ID, &req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, 200, "Password changed successfully", nil)
}

func History(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	page, limit := handlers.Page(c)
	history, err := service.NewUserService(ctx).History(identity.ID, page, limit)
	handlers.SendResponse(c, err, history)
}

func UpdateAvatar(ctx context.Context, c *app.RequestContext) {
	updateMedia(ctx, c, service.MediaAvatar)
}

func UpdateCover(ctx context.Context, c *app.RequestContext) {
	updateMedia(ctx, c, service.MediaCover)
}

// updateMedia 表单字段名与媒体类型一致：avatar 或 cover
func updateMedia(ctx context.Context, c *app.RequestContext, kind string) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	path, contentType, err := handlers.SaveUpload(c, kind, true)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	user, err := service.NewUserService(ctx).UpdateMedia(identity.ID, kind, path, contentType)
	handlers.SendResponse(c, err, user)
}
