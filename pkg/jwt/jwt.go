package jwt

import (
	"context"
	"strconv"
	"strings"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	gojwt "github.com/golang-jwt/jwt/v5"
	hzjwt "github.com/hertz-contrib/jwt"
	"github.com/pkg/errors"
)

const (
	claimID   = "id"
	claimRole = "role"
)

var (
	// AuthMiddleware 负责签发和刷新token
	AuthMiddleware *hzjwt.HertzJWTMiddleware
	secretKey      []byte
)

// LoginFunc 校验登录凭证并返回身份
type LoginFunc func(ctx context.Context, c *app.RequestContext) (*model.Identity, error)

// Responder 把签发结果或错误写回客户端
type Responder interface {
	Token(c *app.RequestContext, token string, expire time.Time)
	Fail(c *app.RequestContext, err error)
}

// Init 初始化token签发中间件
// id以字符串写入claims，避免雪花ID在JSON数字中丢失精度
func Init(secret string, timeout, maxRefresh time.Duration, login LoginFunc, resp Responder) error {
	if secret == "" {
		return errors.New("jwt secret is required")
	}
	if timeout <= 0 {
		timeout = constants.AccessTokenTTL
	}
	if maxRefresh <= 0 {
		maxRefresh = constants.MaxRefreshTTL
	}
	secretKey = []byte(secret)

	var err error
	AuthMiddleware, err = hzjwt.New(&hzjwt.HertzJWTMiddleware{
		Realm:         constants.ServiceName,
		Key:           secretKey,
		Timeout:       timeout,
		MaxRefresh:    maxRefresh,
		IdentityKey:   constants.IdentityKey,
		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
		PayloadFunc: func(data interface{}) hzjwt.MapClaims {
			if v, ok := data.(*model.Identity); ok {
				return hzjwt.MapClaims{
					claimID:   strconv.FormatInt(v.ID, 10),
					claimRole: v.Role,
				}
			}
			return hzjwt.MapClaims{}
		},
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			identity, err := login(ctx, c)
			if err != nil {
				return nil, err
			}
			return identity, nil
		},
		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			resp.Token(c, token, expire)
		},
		RefreshResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			resp.Token(c, token, expire)
		},
		HTTPStatusMessageFunc: func(e error, ctx context.Context, c *app.RequestContext) string {
			c.Set(errKey, e)
			return e.Error()
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			if v, ok := c.Get(errKey); ok {
				if e, ok := v.(error); ok {
					resp.Fail(c, unauthorized(e))
					return
				}
			}
			resp.Fail(c, errno.AuthErr.WithMessage(message))
		},
	})
	if err != nil {
		return errors.WithMessage(err, "init jwt middleware")
	}
	hlog.Infof("jwt issuer ready, timeout=%s max_refresh=%s", timeout, maxRefresh)
	return nil
}

const errKey = "jwt_error"

// unauthorized 登录失败保留业务错误，其余token错误统一为认证失败
func unauthorized(e error) error {
	var en errno.ErrNo
	if errors.As(e, &en) {
		return en
	}
	switch {
	case errors.Is(e, hzjwt.ErrExpiredToken):
		return errno.TokenExpiredErr
	case errors.Is(e, hzjwt.ErrEmptyAuthHeader), errors.Is(e, hzjwt.ErrEmptyQueryToken):
		return errno.AuthErr
	default:
		return errno.TokenInvalidErr.WithDetail(e.Error())
	}
}

// GenerateToken 直接为身份签发token，注册成功后使用
func GenerateToken(identity *model.Identity) (string, time.Time, error) {
	if AuthMiddleware == nil {
		return "", time.Time{}, errors.New("jwt middleware not initialized")
	}
	return AuthMiddleware.TokenGenerator(identity)
}

// ExtractBearer 从Authorization头中取出token
func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// ParseToken 校验签名与过期时间
// 过期返回TokenExpiredErr，其余失败返回带校验细节的TokenInvalidErr
func ParseToken(token string) (*model.Identity, error) {
	if token == "" {
		return nil, errno.AuthErr
	}
	claims := gojwt.MapClaims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (interface{}, error) {
		return secretKey, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}), gojwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, errno.TokenExpiredErr
		}
		return nil, errno.TokenInvalidErr.WithDetail(err.Error())
	}

	id, err := idFromClaim(claims[claimID])
	if err != nil {
		return nil, errno.TokenInvalidErr.WithDetail(err.Error())
	}
	role, _ := claims[claimRole].(string)
	if role == "" {
		role = constants.RoleUser
	}
	return &model.Identity{ID: id, Role: role}, nil
}

func idFromClaim(v interface{}) (int64, error) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return 0, errors.New("invalid id claim")
		}
		return n, nil
	case float64:
		if id <= 0 {
			return 0, errors.New("invalid id claim")
		}
		return int64(id), nil
	default:
		return 0, errors.New("missing id claim")
	}
}
