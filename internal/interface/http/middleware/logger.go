package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/pkg/logger"
	"github.com/xiebiao/bookorder/pkg/tracing"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// slowRequest 超过这个耗时记一条Warn
const slowRequest = 3 * time.Second

// Logger 请求日志中间件
//
// 1. 沿用上游传入的X-Request-ID,没有则生成一个
// 2. 把带request_id(和trace_id)的logger放进request context,用例里的日志都会带上
// 3. 请求结束后记录方法、路径、状态码、耗时
func Logger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)

		ctx := c.Request.Context()
		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		reqLog := base.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLog))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		logFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			logFields = append(logFields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			reqLog.Error("http request", logFields...)
		case latency > slowRequest:
			reqLog.Warn("slow http request", logFields...)
		default:
			reqLog.Info("http request", logFields...)
		}
	}
}

// GetRequestID 从gin.Context获取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
