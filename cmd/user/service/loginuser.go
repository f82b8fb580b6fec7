package service

import (
	"context"
	"strings"
	"sync"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type LoginRequest struct {
	// Login 用户名或邮箱
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Provider 非空时交给对应的外部身份提供方校验
	Provider string `json:"provider"`
}

func (r *LoginRequest) login() string {
	for _, v := range []string{r.Login, r.Username, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

var errInvalidCredentials = errno.AuthErr.WithMessage("Invalid credentials")

// Authenticate 校验登录凭证
func (s *UserService) Authenticate(req *LoginRequest) (*model.Identity, error) {
	if req.Provider != "" {
		return s.authenticateExternal(req)
	}
	login := req.login()
	if login == "" || req.Password == "" {
		return nil, errno.ParamErr.WithMessage("Username or email and password are required")
	}
	user, err := db.GetUserByLogin(s.ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.VerifyPassword(req.Password, user.Password) {
		return nil, errInvalidCredentials
	}
	return &model.Identity{ID: user.ID, Role: user.Role}, nil
}

// ExternalIdentity 外部身份提供方确认的用户
type ExternalIdentity struct {
	Email    string
	Username string
	FullName string
	Avatar   string
}

// IdentityProvider 可选的外部身份提供方，例如OAuth
type IdentityProvider interface {
	Name() string
	Resolve(ctx context.Context, login, secret string) (*ExternalIdentity, error)
}

var (
	providersMu sync.RWMutex
	providers   = map[string]IdentityProvider{}
)

// RegisterProvider 在启动时注册外部身份提供方
func RegisterProvider(p IdentityProvider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[p.Name()] = p
	hlog.Infof("identity provider %s registered", p.Name())
}

func lookupProvider(name string) (IdentityProvider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[name]
	return p, ok
}

// authenticateExternal 外部身份按邮箱关联本地用户，首次登录时创建
func (s *UserService) authenticateExternal(req *LoginRequest) (*model.Identity, error) {
	p, ok := lookupProvider(req.Provider)
	if !ok {
		return nil, errno.ParamErr.WithMessage("Unknown identity provider")
	}
	ext, err := p.Resolve(s.ctx, req.login(), req.Password)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "identity provider %s rejected login: %v", p.Name(), err)
		return nil, errInvalidCredentials
	}
	email := strings.ToLower(ext.Email)
	user, err := db.GetUserByLogin(s.ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{
			Username: strings.ToLower(ext.Username),
			Email:    email,
			FullName: ext.FullName,
			Avatar:   ext.Avatar,
			Role:     constants.RoleUser,
		}
		if err = db.CreateUser(s.ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errno.ConflictErr.WithMessage("Username already exists")
			}
			return nil, err
		}
	}
	return &model.Identity{ID: user.ID, Role: user.Role}, nil
}
