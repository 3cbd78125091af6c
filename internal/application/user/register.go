package user

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/user"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// RegisterUseCase 用户登记用例
// 设计说明：
// 1. 订单引擎只需要知道用户是否存在，不保存密码、不负责登录
// 2. user_id由调用方（用户服务）分配，重复登记返回冲突
type RegisterUseCase struct {
	userRepo user.Repository
	logger   *zap.Logger
}

// NewRegisterUseCase 创建登记用例
func NewRegisterUseCase(userRepo user.Repository, logger *zap.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterRequest 登记请求
type RegisterRequest struct {
	UserID   string
	Username string
}

// Execute 执行登记
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperrors.Newf(apperrors.ErrInvalidParams, "user_id不能为空")
	}

	u := user.NewUser(req.UserID, req.Username)
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("用户登记成功", zap.String("user_id", u.UserID))
	return u, nil
}
