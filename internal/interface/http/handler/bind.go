package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// bindJSON 绑定请求体
// 领域类型自己的反序列化错误(如非法的status)原样返回,其余归为参数格式错误
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Newf(apperrors.ErrBindError, "参数错误: %v", err)
	}
	return nil
}
