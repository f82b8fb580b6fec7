package service

import (
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
}

func (s *UserService) UpdateProfile(id int64, req *UpdateProfileRequest) (*model.User, error) {
	fields := map[string]interface{}{}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRegex.MatchString(email) {
			return nil, errno.ParamErr.WithMessage("Invalid email address")
		}
		fields["email"] = email
	}
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > constants.MaxBioLength {
			return nil, errno.ParamErr.WithMessage("Bio is too long")
		}
		fields["bio"] = *req.Bio
	}
	if len(fields) == 0 {
		return nil, errno.ParamErr.WithMessage("Nothing to update")
	}
	if err := db.UpdateUser(s.ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errno.ConflictErr.WithMessage("Email already in use")
		}
		return nil, err
	}
	return s.GetMe(id)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *UserService) ChangePassword(id int64, req *ChangePasswordRequest) error {
	if req.OldPassword == "" || len(req.NewPassword) < 6 {
		return errno.ParamErr.WithMessage("Old password and a new password of at least 6 characters are required")
	}
	user, err := s.GetMe(id)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(req.OldPassword, user.Password) {
		return errno.ParamErr.WithMessage("Invalid old password")
	}
	hashed, err := utils.Crypt(req.NewPassword)
	if err != nil {
		return errors.WithMessage(err, "Password fail to crypt")
	}
	return db.UpdatePassword(s.ctx, id, hashed)
}
