package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/pkg/logger"
	"github.com/xiebiao/bookorder/pkg/metrics"
	"github.com/xiebiao/bookorder/pkg/tracing"
)

const tracerName = "order"

// OrderCache 订单详情缓存(由infrastructure/persistence/redis实现)
type OrderCache interface {
	// Get 未命中时返回(nil, nil)
	Get(ctx context.Context, orderID string) (*order.Order, error)
	SetMany(ctx context.Context, orders []*order.Order) error
	DeleteMany(ctx context.Context, orderIDs []string) error
}

// NopCache 不缓存(redis未启用或测试时使用)
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*order.Order, error) { return nil, nil }
func (NopCache) SetMany(context.Context, []*order.Order) error     { return nil }
func (NopCache) DeleteMany(context.Context, []string) error        { return nil }

// afterCommit 事务提交后的收尾:缓存和事件
// 这里的失败只记录日志,订单已经提交,不能再让调用方看到失败
type afterCommit struct {
	cache  OrderCache
	events order.EventPublisher
	logger *zap.Logger
}

func (a afterCommit) cacheOrders(ctx context.Context, orders []*order.Order) {
	if err := a.cache.SetMany(ctx, orders); err != nil {
		a.log(ctx).Warn("写入订单缓存失败", zap.Int("count", len(orders)), zap.Error(err))
	}
}

func (a afterCommit) evictOrders(ctx context.Context, orderIDs []string) {
	if err := a.cache.DeleteMany(ctx, orderIDs); err != nil {
		a.log(ctx).Warn("删除订单缓存失败", zap.Strings("order_ids", orderIDs), zap.Error(err))
	}
}

func (a afterCommit) publish(ctx context.Context, routingKey string, orders []*order.Order) {
	events := make([]order.Event, len(orders))
	for i, o := range orders {
		events[i] = order.NewEvent(o)
	}
	if err := a.events.Publish(ctx, routingKey, events); err != nil {
		a.log(ctx).Warn("发布订单事件失败",
			zap.String("routing_key", routingKey),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func (a afterCommit) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, a.logger)
}

// observe 用例级别的Span和耗时指标
// 用法: ctx, done := observe(ctx, "create"); defer func() { done(err) }()
func observe(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "order."+operation)
	return ctx, func(err error) {
		tracing.EndSpan(span, err)
		metrics.RecordOrderOperation(operation, err, time.Since(start))
	}
}
