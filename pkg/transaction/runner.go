// Package transaction 事务执行器:在一个数据库事务中执行一组操作,冲突时整体重试
//
// 重试规则:
//  1. 只有事务冲突(apperrors.ErrCodeTxConflict)会重试,业务错误立即返回
//  2. 最多执行 1 + MaxRetries 次,每次之间固定等待Backoff
//  3. 每次重试都从头执行整个工作单元(重新读取、重新校验)
//  4. 等待期间context被取消时返回ctx.Err()
package transaction

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/metrics"
	"github.com/xiebiao/bookorder/pkg/tracing"
)

// DefaultBackoff 默认重试间隔
const DefaultBackoff = time.Second

const tracerName = "transaction"

// Transactor 开启事务并把事务句柄放进context
// fn返回nil时提交,返回error时回滚;提交失败应返回事务冲突错误
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options 重试配置
type Options struct {
	MaxRetries int           // 0表示只执行一次
	Backoff    time.Duration // <=0时使用DefaultBackoff
}

// Runner 事务执行器
type Runner struct {
	tx         Transactor
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewRunner 创建事务执行器
func NewRunner(tx Transactor, opts Options, logger *zap.Logger) *Runner {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.InitMetrics()

	return &Runner{
		tx:         tx,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		logger:     logger,
	}
}

// Run 使用默认重试次数执行工作单元
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.RunWithRetries(ctx, r.maxRetries, fn)
}

// RunWithRetries 指定本次调用的重试次数
func (r *Runner) RunWithRetries(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewConstant(r.backoff))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		start := time.Now()

		err := r.runOnce(ctx, attempt, fn)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			metrics.RecordTxAttempt(metrics.ResultSuccess, elapsed)
			return nil

		case apperrors.IsTxConflict(err) && attempt <= maxRetries:
			metrics.RecordTxAttempt(metrics.ResultRetry, elapsed)
			r.logger.Warn("事务冲突,准备重试",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", r.backoff),
				zap.Error(err),
			)
			return retry.RetryableError(err)

		default:
			metrics.RecordTxAttempt(metrics.ResultFailure, elapsed)
			if apperrors.IsTxConflict(err) {
				r.logger.Error("事务冲突,重试次数已用尽",
					zap.Int("attempts", attempt),
					zap.Error(err),
				)
			}
			return err
		}
	})
}

// runOnce 一次事务尝试(一个Span)
func (r *Runner) runOnce(ctx context.Context, attempt int, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "transaction.Run")
	span.SetAttributes(attribute.Int("tx.attempt", attempt))
	defer func() { tracing.EndSpan(span, err) }()

	return r.tx.Transaction(ctx, fn)
}

// RunResult 执行工作单元并返回其结果
// 事务未提交成功时返回零值
func RunResult[T any](ctx context.Context, r *Runner, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Run(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
