// Package counter 维护父实体上的冗余计数列与子记录的一致性。
// 子记录的写入与计数调整在同一个事务中提交，计数使用原子的 col = col ± n 更新，
// 递减在0处钳制，计数永远不会为负。
package counter

import (
	"context"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Error 计数引擎的哨兵错误，errors.Is 按 reason 区分，
// 展开后是普通的 errno.ErrNo，SendResponse 仍能得到对应的HTTP状态码
type Error struct {
	errno.ErrNo
	reason string
}

func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.reason == e.reason
}

func (e Error) Unwrap() error {
	return e.ErrNo
}

var (
	// ErrTargetNotFound 计数所在的父实体不存在
	ErrTargetNotFound = Error{errno.NotFoundErr.WithMessage("Counter target not found"), "target_not_found"}
	// ErrDuplicate 子记录的唯一索引冲突
	ErrDuplicate = Error{errno.ConflictErr.WithMessage("Resource already exists"), "duplicate"}
	// ErrNothingDeleted 要删除的子记录不存在
	ErrNothingDeleted = Error{errno.NotFoundErr.WithMessage("Resource not found"), "nothing_deleted"}
)

// Target 一个计数列：Table 中 Key = ID 那一行的 Column
type Target struct {
	Table  string
	Key    string
	ID     int64
	Column string
}

func VideoLikes(videoID int64) Target {
	return Target{Table: constants.TableVideos, Key: "id", ID: videoID, Column: constants.ColumnLikes}
}

func VideoComments(videoID int64) Target {
	return Target{Table: constants.TableVideos, Key: "id", ID: videoID, Column: constants.ColumnComments}
}

func VideoViews(videoID int64) Target {
	return Target{Table: constants.TableVideos, Key: "id", ID: videoID, Column: constants.ColumnViews}
}

func CommentLikes(commentID int64) Target {
	return Target{Table: constants.TableComments, Key: "id", ID: commentID, Column: constants.ColumnLikes}
}

func SubscriberCount(userID int64) Target {
	return Target{Table: constants.TableUsers, Key: "id", ID: userID, Column: constants.ColumnSubscriberCount}
}

// Adjust 在tx中原子地调整计数，delta为负时在0处钳制
func Adjust(tx *gorm.DB, t Target, delta int64) error {
	if delta == 0 {
		return nil
	}
	col := clause.Column{Name: t.Column}
	var expr clause.Expr
	if delta > 0 {
		expr = gorm.Expr("? + ?", col, delta)
	} else {
		n := -delta
		expr = gorm.Expr("CASE WHEN ? >= ? THEN ? - ? ELSE 0 END", col, n, col, n)
	}
	res := tx.Table(t.Table).
		Where(clause.Eq{Column: clause.Column{Name: t.Key}, Value: t.ID}).
		UpdateColumn(t.Column, expr)
	if res.Error != nil {
		return errors.WithMessagef(res.Error, "adjust %s.%s of %d", t.Table, t.Column, t.ID)
	}
	if res.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// Increment 不伴随子记录的单纯计数，例如播放量
func Increment(ctx context.Context, db *gorm.DB, t Target) error {
	return Adjust(db.WithContext(ctx), t, 1)
}

// CreateWithCount 写入子记录并把每个target加一，任一步失败整体回滚
func CreateWithCount(ctx context.Context, db *gorm.DB, row interface{}, targets ...Target) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CreateWithCountTx(tx, row, targets...)
	})
}

// CreateWithCountTx 供调用方在自己的事务中组合更多写入
func CreateWithCountTx(tx *gorm.DB, row interface{}, targets ...Target) error {
	if err := tx.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return errors.WithMessage(err, "create child row")
	}
	for _, t := range targets {
		if err := Adjust(tx, t, 1); err != nil {
			return err
		}
	}
	return nil
}

// Scope 选出要删除的子记录
type Scope func(*gorm.DB) *gorm.DB

// DeleteWithCount 删除scope选中的子记录，每个target减去实际删除的行数
// 没有删除任何行时返回ErrNothingDeleted，计数不变
func DeleteWithCount(ctx context.Context, db *gorm.DB, model interface{}, scope Scope, targets ...Target) (int64, error) {
	var deleted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := DeleteWithCountTx(tx, model, scope, targets...)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func DeleteWithCountTx(tx *gorm.DB, model interface{}, scope Scope, targets ...Target) (int64, error) {
	res := scope(tx).Delete(model)
	if res.Error != nil {
		return 0, errors.WithMessage(res.Error, "delete child rows")
	}
	if res.RowsAffected == 0 {
		return 0, ErrNothingDeleted
	}
	for _, t := range targets {
		if err := Adjust(tx, t, -res.RowsAffected); err != nil {
			return 0, err
		}
	}
	return res.RowsAffected, nil
}

// Drift 一次重算的结果
type Drift struct {
	Target Target `json:"target"`
	Cached int64  `json:"cached"`
	Actual int64  `json:"actual"`
}

func (d Drift) Repaired() bool {
	return d.Cached != d.Actual
}

// Recount 以子记录的数量为准重写缓存的计数
// children 统计子记录数量，在同一事务中执行
func Recount(ctx context.Context, db *gorm.DB, t Target, children func(tx *gorm.DB) (int64, error)) (Drift, error) {
	d := Drift{Target: t}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cached []int64
		if err := tx.Table(t.Table).
			Where(clause.Eq{Column: clause.Column{Name: t.Key}, Value: t.ID}).
			Limit(1).
			Pluck(t.Column, &cached).Error; err != nil {
			return errors.WithMessage(err, "read cached counter")
		}
		if len(cached) == 0 {
			return ErrTargetNotFound
		}
		d.Cached = cached[0]

		actual, err := children(tx)
		if err != nil {
			return errors.WithMessage(err, "count children")
		}
		d.Actual = actual
		if d.Cached == d.Actual {
			return nil
		}
		return tx.Table(t.Table).
			Where(clause.Eq{Column: clause.Column{Name: t.Key}, Value: t.ID}).
			UpdateColumn(t.Column, actual).Error
	})
	return d, err
}
