package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/logger"
	"github.com/xiebiao/bookorder/pkg/response"
)

// Recovery panic恢复,返回统一的500响应并记录堆栈
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error("panic recovered",
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		response.Error(c, apperrors.Wrap(fmt.Errorf("panic: %v", recovered), "系统内部错误"))
		c.Abort()
	})
}
