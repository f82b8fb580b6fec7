package authfunc

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/jwt"
	"github.com/cloudwego/hertz/pkg/app"
)

// Auth 必须登录，token缺失、无效或过期时返回401且不再执行后续handler
func Auth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		RequiredAuthFunc(),
	)
}

// OptionalAuth token有效时绑定身份，否则按匿名用户继续
func OptionalAuth() []app.HandlerFunc {
	return append(make([]app.HandlerFunc, 0),
		OptionalAuthFunc(),
	)
}

// AdminOnly 必须是管理员
func AdminOnly() []app.HandlerFunc {
	return append(Auth(), func(ctx context.Context, c *app.RequestContext) {
		identity, _ := CurrentIdentity(c)
		if identity == nil || !identity.IsAdmin() {
			handlers.SendResponse(c, errno.ForbiddenErr.WithMessage("Admin role required"), nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	})
}

func resolveIdentity(c *app.RequestContext) (*model.Identity, error) {
	token := jwt.ExtractBearer(string(c.GetHeader("Authorization")))
	if token == "" {
		token = c.Query("token")
	}
	return jwt.ParseToken(token)
}

func RequiredAuthFunc() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		identity, err := resolveIdentity(c)
		if err != nil {
			handlers.SendResponse(c, err, nil)
			c.Abort()
			return
		}
		c.Set(constants.IdentityKey, identity)
		c.Next(ctx)
	}
}

func OptionalAuthFunc() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if identity, err := resolveIdentity(c); err == nil {
			c.Set(constants.IdentityKey, identity)
		}
		c.Next(ctx)
	}
}

// CurrentIdentity 只在Auth或OptionalAuth之后有值
func CurrentIdentity(c *app.RequestContext) (*model.Identity, bool) {
	v, ok := c.Get(constants.IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*model.Identity)
	return identity, ok && identity != nil
}

// ViewerID 匿名访问返回0
func ViewerID(c *app.RequestContext) int64 {
	if identity, ok := CurrentIdentity(c); ok {
		return identity.ID
	}
	return 0
}

// MustIdentity 在Auth之后使用，拿不到身份时写回401
func MustIdentity(c *app.RequestContext) (*model.Identity, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		handlers.SendResponse(c, errno.AuthErr, nil)
		return nil, false
	}
	return identity, true
}
