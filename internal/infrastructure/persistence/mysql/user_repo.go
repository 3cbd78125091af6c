package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookorder/internal/domain/user"
)

// userRepository 用户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// user_id唯一性由数据库UNIQUE索引保证
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		UserID:   u.UserID,
		Username: u.Username,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrUserIDDuplicate
		}
		return wrapDBError(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	return nil
}

// FindByUserIDs 批量查询用户
// 学习要点：
// 1. 一次IN查询代替N次单条查询
// 2. 不存在的ID直接缺席，由调用方比较数量
func (r *userRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]*user.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var models []UserModel
	if err := r.getDB(ctx).Where("user_id IN ?", userIDs).Find(&models).Error; err != nil {
		return nil, wrapDBError(err, "查询用户失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		UserID:    model.UserID,
		Username:  model.Username,
		CreatedAt: model.CreatedAt,
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
