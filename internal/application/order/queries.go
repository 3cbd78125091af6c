package order

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/pkg/metrics"
)

// GetOrderUseCase 查询订单详情(Cache-Aside)
type GetOrderUseCase struct {
	orderRepo order.Repository
	after     afterCommit
}

// NewGetOrderUseCase 创建订单详情查询用例
func NewGetOrderUseCase(orderRepo order.Repository, cache OrderCache, logger *zap.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo: orderRepo,
		after:     afterCommit{cache: cache, logger: logger},
	}
}

// Execute 先查缓存,未命中再查数据库并回填
// 缓存出错时降级为直接查数据库
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID string) (*order.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, order.ErrMissingOrderID
	}

	cached, err := uc.after.cache.Get(ctx, orderID)
	switch {
	case err != nil:
		metrics.IncOrderCache(metrics.CacheError)
		uc.after.log(ctx).Warn("读取订单缓存失败", zap.String("order_id", orderID), zap.Error(err))
	case cached != nil:
		metrics.IncOrderCache(metrics.CacheHit)
		return cached, nil
	default:
		metrics.IncOrderCache(metrics.CacheMiss)
	}

	orders, err := uc.orderRepo.FindByOrderIDs(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, notFound(order.ErrOrderNotFound, "订单", []string{orderID})
	}

	uc.after.cacheOrders(ctx, orders)
	return orders[0], nil
}

// ListUserOrdersUseCase 查询用户的所有订单(最新的在前)
type ListUserOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListUserOrdersUseCase 创建用户订单列表用例
func NewListUserOrdersUseCase(orderRepo order.Repository) *ListUserOrdersUseCase {
	return &ListUserOrdersUseCase{orderRepo: orderRepo}
}

// Execute 用户不存在或没有订单时返回空列表
func (uc *ListUserOrdersUseCase) Execute(ctx context.Context, userID string) ([]*order.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, order.ErrMissingUserID
	}
	return uc.orderRepo.FindByUserIDs(ctx, []string{userID})
}
