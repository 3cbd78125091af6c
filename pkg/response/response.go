package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/logger"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），客户端按Code判断具体错误
// 2. HTTP状态码由错误类别决定（400/404/409/503/500）
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	orders, err := uc.Execute(ctx, reqs)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := apperrors.HTTPStatus(appErr)

	// 内部错误只进日志，不返回给客户端
	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.Int("code", appErr.Code),
			zap.String("kind", apperrors.KindOf(appErr).String()),
			zap.Error(err),
		)
	} else {
		log.Debug("request rejected",
			zap.Int("code", appErr.Code),
			zap.String("message", appErr.Message),
		)
	}

	_ = c.Error(err)
	c.JSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息（HTTP状态码按错误码的类别推断）
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}
