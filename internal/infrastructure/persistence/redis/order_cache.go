package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
)

// OrderCache 订单详情缓存(Cache-Aside)
// 教学要点:
// 1. 查询时先查缓存,未命中再查数据库并回填
// 2. 状态变更提交后删除缓存,下次查询重新加载
// 3. 缓存只是加速,任何错误都不影响订单事务本身
// 4. 查询回填可能晚于状态变更后的删除,未到终态的订单只缓存activeTTL
type OrderCache struct {
	client    *redis.Client
	ttl       time.Duration // 终态订单
	activeTTL time.Duration // 未到终态的订单
}

const (
	defaultOrderTTL       = 5 * time.Minute
	defaultActiveOrderTTL = 10 * time.Second
)

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client, cfg *config.Config) *OrderCache {
	ttl := cfg.Cache.OrderTTL
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	activeTTL := cfg.Cache.ActiveOrderTTL
	if activeTTL <= 0 {
		activeTTL = defaultActiveOrderTTL
	}
	if activeTTL > ttl {
		activeTTL = ttl
	}
	return &OrderCache{client: client, ttl: ttl, activeTTL: activeTTL}
}

// ttlFor 终态订单不会再变,可以缓存更久
func (c *OrderCache) ttlFor(o *order.Order) time.Duration {
	if o.Status.IsTerminal() {
		return c.ttl
	}
	return c.activeTTL
}

// cachedOrder 缓存中的JSON结构
type cachedOrder struct {
	ID        uint         `json:"id"`
	OrderID   string       `json:"order_id"`
	UserID    string       `json:"user_id"`
	Books     order.Books  `json:"books"`
	Status    order.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// orderCacheKey 订单缓存键,如 order:detail:6f1c...
func orderCacheKey(orderID string) string {
	return "order:detail:" + orderID
}

// Get 获取订单缓存
// 未命中时返回(nil, nil)
func (c *OrderCache) Get(ctx context.Context, orderID string) (*order.Order, error) {
	val, err := c.client.Get(ctx, orderCacheKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取订单缓存失败: %w", err)
	}

	var co cachedOrder
	if err := json.Unmarshal(val, &co); err != nil {
		return nil, fmt.Errorf("订单缓存反序列化失败: %w", err)
	}

	return &order.Order{
		ID:        co.ID,
		OrderID:   co.OrderID,
		UserID:    co.UserID,
		Books:     co.Books,
		Status:    co.Status,
		CreatedAt: co.CreatedAt,
		UpdatedAt: co.UpdatedAt,
	}, nil
}

// SetMany 批量写入订单缓存
// 使用Pipeline,一次网络往返写入所有SETEX
func (c *OrderCache) SetMany(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, o := range orders {
			data, err := json.Marshal(cachedOrder{
				ID:        o.ID,
				OrderID:   o.OrderID,
				UserID:    o.UserID,
				Books:     o.Books,
				Status:    o.Status,
				CreatedAt: o.CreatedAt,
				UpdatedAt: o.UpdatedAt,
			})
			if err != nil {
				return fmt.Errorf("订单序列化失败: %w", err)
			}
			pipe.SetEx(ctx, orderCacheKey(o.OrderID), data, c.ttlFor(o))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("设置订单缓存失败: %w", err)
	}
	return nil
}

// DeleteMany 批量删除订单缓存
func (c *OrderCache) DeleteMany(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = orderCacheKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("删除订单缓存失败: %w", err)
	}
	return nil
}
