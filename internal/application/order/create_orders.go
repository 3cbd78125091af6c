package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/internal/domain/user"
	"github.com/xiebiao/bookorder/pkg/metrics"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// CreateOrdersUseCase 批量下单用例
// 教学要点:
// 1. 整批订单在一个事务中创建,任何一个订单不合法则整批失败
// 2. 库存按整批汇总校验(同一本书出现在多个订单中时数量累加)
// 3. 下单不扣库存,库存只在订单送达时扣减
type CreateOrdersUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	runner    *transaction.Runner
	after     afterCommit
}

// NewCreateOrdersUseCase 创建批量下单用例
func NewCreateOrdersUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	runner *transaction.Runner,
	cache OrderCache,
	events order.EventPublisher,
	logger *zap.Logger,
) *CreateOrdersUseCase {
	return &CreateOrdersUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		runner:    runner,
		after:     afterCommit{cache: cache, events: events, logger: logger},
	}
}

// Execute 执行批量下单
// 返回新创建的订单(顺序与请求一致,状态均为PENDING)
func (uc *CreateOrdersUseCase) Execute(ctx context.Context, reqs []order.CreateRequest) (created []*order.Order, err error) {
	ctx, done := observe(ctx, "create")
	defer func() { done(err) }()

	// 1. 参数校验(事务外,不合法的请求不占用数据库连接)
	if len(reqs) == 0 {
		return nil, order.ErrEmptyBatch
	}
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	// 2. 事务内:校验引用、校验库存、写入订单
	created, err = transaction.RunResult(ctx, uc.runner, func(txCtx context.Context) ([]*order.Order, error) {
		return uc.create(txCtx, reqs)
	})
	if err != nil {
		uc.after.log(ctx).Info("批量下单失败", zap.Int("orders", len(reqs)), zap.Error(err))
		return nil, err
	}

	// 3. 提交后:指标、缓存、事件
	metrics.AddOrdersCreated(len(created))
	uc.after.cacheOrders(ctx, created)
	uc.after.publish(ctx, order.RoutingKeyCreated, created)

	uc.after.log(ctx).Info("批量下单成功",
		zap.Int("orders", len(created)),
		zap.Strings("order_ids", orderIDsOf(created)),
	)
	return created, nil
}

// create 一次事务尝试
// 重试时整个函数重新执行,订单号也会重新生成
func (uc *CreateOrdersUseCase) create(ctx context.Context, reqs []order.CreateRequest) ([]*order.Order, error) {
	books := make([]order.Books, len(reqs))
	for i, r := range reqs {
		books[i] = r.Books
	}
	demand := AggregateDemand(books...)

	// 1. 校验用户存在
	userIDs := DistinctUserIDs(reqs)
	users, err := uc.userRepo.FindByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	if len(users) < len(userIDs) {
		found := make([]string, len(users))
		for i, u := range users {
			found[i] = u.UserID
		}
		return nil, notFound(user.ErrUserNotFound, "用户", MissingIDs(userIDs, found))
	}

	// 2. 校验图书存在(已下架视为不存在)
	bookIDs := DistinctBookIDs(demand)
	found, err := uc.bookRepo.LockActiveByBookIDs(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	if len(found) < len(bookIDs) {
		return nil, notFound(book.ErrBookNotFound, "图书", MissingIDs(bookIDs, bookIDsOf(found)))
	}

	// 3. 校验库存(只校验,不扣减)
	if err := CheckStock(found, demand); err != nil {
		return nil, err
	}

	// 4. 批量写入订单
	orders := make([]*order.Order, len(reqs))
	for i, r := range reqs {
		orders[i] = order.NewOrder(r.UserID, r.Books)
	}
	if err := uc.orderRepo.BulkCreate(ctx, orders); err != nil {
		return nil, err
	}

	// 5. 在同一事务内读回刚写入的订单
	ids := orderIDsOf(orders)
	saved, err := uc.orderRepo.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return inRequestOrder(saved, ids), nil
}
