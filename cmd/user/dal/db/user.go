package db

import (
	"context"

	"VidTube.com/cmd/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func CreateUser(ctx context.Context, user *model.User) error {
	if err := DB.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Wrap(err, "CreateUser failed")
	}
	return nil
}

// GetUserByID 不存在时返回 (nil, nil)
func GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetUserByID failed")
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := DB.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetUserByUsername failed")
	}
	return &user, nil
}

// GetUserByLogin 用户名或邮箱登录
func GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := DB.WithContext(ctx).Where("username = ? OR email = ?", login, login).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetUserByLogin failed")
	}
	return &user, nil
}

// UsernameOrEmailTaken 注册前的重复检查，唯一索引兜底并发注册
func UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := DB.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "UsernameOrEmailTaken failed")
	}
	return count > 0, nil
}

func UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "UserExists failed")
	}
	return count > 0, nil
}

func UpdateUser(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return errors.Wrap(err, "UpdateUser failed")
	}
	return nil
}

func UpdatePassword(ctx context.Context, id int64, hashed string) error {
	if err := DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashed).Error; err != nil {
		return errors.Wrap(err, "UpdatePassword failed")
	}
	return nil
}

// GetUserSummaries 批量加载列表中需要展示的用户信息
func GetUserSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	res := make(map[int64]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var users []model.User
	if err := DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "GetUserSummaries failed")
	}
	for i := range users {
		res[users[i].ID] = users[i].Summary()
	}
	return res, nil
}

// ListUserIDs 分批遍历用户，对账任务使用
func ListUserIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := DB.WithContext(ctx).Model(&model.User{}).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "ListUserIDs failed")
	}
	return ids, nil
}
