package messaging

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/pkg/circuitbreaker"
	"github.com/xiebiao/bookorder/pkg/metrics"
)

// MessagePublisher 底层消息发布(由pkg/mq.Publisher实现)
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// OrderEventPublisher 订单事件发布器
// 设计说明:
// 1. 每个事件一条消息,经过熔断器发布
// 2. 熔断器打开后剩余事件直接跳过,不再等待连接超时
// 3. 返回所有失败的合并错误,由调用方决定是否只记录日志
type OrderEventPublisher struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	exchange  string
	logger    *zap.Logger
}

var _ order.EventPublisher = (*OrderEventPublisher)(nil)

// NewOrderEventPublisher 创建订单事件发布器
func NewOrderEventPublisher(publisher MessagePublisher, breaker *circuitbreaker.CircuitBreaker, exchange string, logger *zap.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		publisher: publisher,
		breaker:   breaker,
		exchange:  exchange,
		logger:    logger,
	}
}

// Publish 发布一批订单事件
func (p *OrderEventPublisher) Publish(ctx context.Context, routingKey string, events []order.Event) error {
	var errs []error

	for _, event := range events {
		err := p.breaker.Execute(ctx, func(ctx context.Context) error {
			return p.publisher.Publish(ctx, routingKey, event)
		})

		if err == nil {
			metrics.IncMessagePublished(p.exchange, routingKey, metrics.ResultSuccess)
			continue
		}

		if errors.Is(err, circuitbreaker.ErrOpenState) {
			metrics.IncMessagePublished(p.exchange, routingKey, metrics.ResultRejected)
			p.logger.Warn("熔断器已打开,跳过剩余订单事件",
				zap.String("routing_key", routingKey),
				zap.String("order_id", event.OrderID),
			)
			errs = append(errs, err)
			break
		}

		metrics.IncMessagePublished(p.exchange, routingKey, metrics.ResultFailure)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// NopPublisher 不发布任何事件(mq.enabled=false时使用)
type NopPublisher struct{}

// Publish 什么也不做
func (NopPublisher) Publish(context.Context, string, []order.Event) error {
	return nil
}
