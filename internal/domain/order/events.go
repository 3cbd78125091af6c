package order

import (
	"context"
	"time"
)

// 订单事件路由键
const (
	RoutingKeyCreated       = "order.created"
	RoutingKeyStatusChanged = "order.status_changed"
)

// Event 订单事件(事务提交后发布)
type Event struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Books      Books     `json:"books"`
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent 从订单快照生成事件
func NewEvent(o *Order) Event {
	return Event{
		OrderID:    o.OrderID,
		UserID:     o.UserID,
		Books:      o.Books,
		Status:     o.Status,
		OccurredAt: time.Now(),
	}
}

// EventPublisher 订单事件发布接口
// 实现方负责序列化和投递,调用方只在事务提交后调用
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, events []Event) error
}
