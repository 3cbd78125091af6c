package user

import (
	"context"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrUserIDDuplicate user_id已存在
	ErrUserIDDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "user_id已存在")
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 订单流程只用到FindByUserIDs，Create用于初始化数据
type Repository interface {
	// Create 创建用户
	Create(ctx context.Context, user *User) error

	// FindByUserIDs 批量查询用户，不存在的ID不报错
	FindByUserIDs(ctx context.Context, userIDs []string) ([]*User, error)
}
