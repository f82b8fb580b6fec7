package service

import (
	"context"
	"regexp"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mail"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type UserService struct {
	ctx context.Context
}

func NewUserService(ctx context.Context) *UserService {
	return &UserService{ctx: ctx}
}

func validateSignup(req *SignupRequest) error {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if !usernameRegex.MatchString(req.Username) {
		return errno.ParamErr.WithMessage("Username must be 3-30 letters, digits or underscores")
	}
	if !emailRegex.MatchString(req.Email) {
		return errno.ParamErr.WithMessage("Invalid email address")
	}
	if len(req.Password) < 6 {
		return errno.ParamErr.WithMessage("Password must be at least 6 characters")
	}
	return nil
}

// Signup 注册新用户，欢迎邮件在后台发送，失败不影响注册结果
func (s *UserService) Signup(req *SignupRequest) (*model.User, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}
	taken, err := db.UsernameOrEmailTaken(s.ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errno.ConflictErr.WithMessage("Username or email already exists")
	}
	hashed, err := utils.Crypt(req.Password)
	if err != nil {
		return nil, errors.WithMessage(err, "Password fail to crypt")
	}
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
		Role:     constants.RoleUser,
	}
	if err = db.CreateUser(s.ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errno.ConflictErr.WithMessage("Username or email already exists")
		}
		return nil, err
	}
	hlog.CtxInfof(s.ctx, "user %d signed up as %s", user.ID, user.Username)

	mail.SendAsync(mail.WelcomeMessage(user.Email, user.Username))
	return user, nil
}
