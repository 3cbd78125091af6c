// Package logger 基于zap的结构化日志
//
// 使用方式:
//
//	log, err := logger.New(logger.Options{Level: "info", Format: "json", Output: "stdout"})
//	log.Info("订单创建成功", zap.String("order_id", id))
//
// 请求级别的日志(带request_id)通过context传递:
//
//	ctx = logger.WithContext(ctx, log.With(zap.String("request_id", rid)))
//	logger.FromContext(ctx).Warn("...")
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 创建zap Logger
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch opts.Format {
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("不支持的日志格式: %s", opts.Format)
	}

	sink, err := openSink(opts.Output)
	if err != nil {
		return nil, err
	}

	zapOpts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if opts.EnableCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}

	return zap.New(zapcore.NewCore(encoder, sink, level), zapOpts...), nil
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		return zapcore.AddSync(f), nil
	}
}

type ctxKey struct{}

// WithContext 把logger放进context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 取出context中的logger,没有则返回Nop
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, zap.NewNop())
}

// FromContextOr 取出context中的logger,没有则返回fallback
// HTTP请求的logger带request_id,后台调用使用组件自己的logger
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}
