package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/domain/order"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/metrics"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// UpdateOrderStatusUseCase 批量更新订单状态用例
// 教学要点:
// 1. DELIVERED是终态,批次中只要有一个订单已送达,整批拒绝
// 2. 目标状态不是CANCELLED的订单需要重新校验库存
// 3. 目标状态为DELIVERED的订单在同一事务中扣减库存,扣减在状态更新之前
// 4. 行锁(订单、图书)保证同一订单并发送达时只扣减一次
type UpdateOrderStatusUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	runner    *transaction.Runner
	after     afterCommit
}

// NewUpdateOrderStatusUseCase 创建批量更新状态用例
func NewUpdateOrderStatusUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	runner *transaction.Runner,
	cache OrderCache,
	events order.EventPublisher,
	logger *zap.Logger,
) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		runner:    runner,
		after:     afterCommit{cache: cache, events: events, logger: logger},
	}
}

// statusResult 一次事务尝试的结果
type statusResult struct {
	orders    []*order.Order
	delivered int // 本次扣减的库存总量
}

// Execute 执行批量状态更新
// 返回更新后的订单(顺序与请求一致)
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, changes []order.StatusChange) (updated []*order.Order, err error) {
	ctx, done := observe(ctx, "update_status")
	defer func() { done(err) }()

	// 1. 参数校验
	if err := validateChanges(changes); err != nil {
		return nil, err
	}
	changes = dedupChanges(changes)

	// 2. 事务内:加锁、校验、扣库存、改状态
	result, err := transaction.RunResult(ctx, uc.runner, func(txCtx context.Context) (statusResult, error) {
		return uc.update(txCtx, changes)
	})
	if err != nil {
		uc.after.log(ctx).Info("批量更新订单状态失败", zap.Int("orders", len(changes)), zap.Error(err))
		return nil, err
	}

	// 3. 提交后:指标、缓存失效、事件
	for _, c := range changes {
		metrics.IncOrderStatusUpdate(c.Status.String())
	}
	metrics.AddStockDecremented(result.delivered)
	uc.after.evictOrders(ctx, orderIDsOf(result.orders))
	uc.after.publish(ctx, order.RoutingKeyStatusChanged, result.orders)

	uc.after.log(ctx).Info("批量更新订单状态成功",
		zap.Int("orders", len(result.orders)),
		zap.Int("stock_decremented", result.delivered),
	)
	return result.orders, nil
}

func validateChanges(changes []order.StatusChange) error {
	if len(changes) == 0 {
		return order.ErrEmptyBatch
	}

	for _, c := range changes {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// dedupChanges 合并同一订单的多次变更
// 位置取首次出现,目标状态取最后一次(与按顺序逐条更新的结果一致)
func dedupChanges(changes []order.StatusChange) []order.StatusChange {
	index := make(map[string]int, len(changes))
	deduped := make([]order.StatusChange, 0, len(changes))
	for _, c := range changes {
		if i, ok := index[c.OrderID]; ok {
			deduped[i].Status = c.Status
			continue
		}
		index[c.OrderID] = len(deduped)
		deduped = append(deduped, c)
	}
	return deduped
}

// update 一次事务尝试
func (uc *UpdateOrderStatusUseCase) update(ctx context.Context, changes []order.StatusChange) (statusResult, error) {
	targets := make(map[string]order.Status, len(changes))
	ids := make([]string, len(changes))
	for i, c := range changes {
		targets[c.OrderID] = c.Status
		ids[i] = c.OrderID
	}

	// 1. 锁定订单(SELECT ... FOR UPDATE,按order_id排序)
	orders, err := uc.orderRepo.LockByOrderIDs(ctx, ids)
	if err != nil {
		return statusResult{}, err
	}
	if len(orders) < len(ids) {
		return statusResult{}, notFound(order.ErrOrderNotFound, "订单", MissingIDs(ids, orderIDsOf(orders)))
	}

	// 2. 终态校验:任何一个订单已送达,整批拒绝
	for _, o := range orders {
		if !o.CanTransitionTo(targets[o.OrderID]) {
			return statusResult{}, apperrors.Newf(order.ErrOrderDelivered, "订单%s已送达,不允许变更", o.OrderID)
		}
	}

	// 3. 汇总需求:非CANCELLED的订单参与库存校验,DELIVERED的订单参与扣减
	var checkBooks, deliverBooks []order.Books
	var delivering []*order.Order
	for _, o := range orders {
		switch targets[o.OrderID] {
		case order.StatusCancelled:
			continue
		case order.StatusDelivered:
			deliverBooks = append(deliverBooks, o.Books)
			delivering = append(delivering, o)
		}
		checkBooks = append(checkBooks, o.Books)
	}

	var delivered int
	if demand := AggregateDemand(checkBooks...); len(demand) > 0 {
		// 4. 锁定图书并校验库存
		bookIDs := DistinctBookIDs(demand)
		found, err := uc.bookRepo.LockActiveByBookIDs(ctx, bookIDs)
		if err != nil {
			return statusResult{}, err
		}
		if len(found) < len(bookIDs) {
			return statusResult{}, notFound(book.ErrBookNotFound, "图书", MissingIDs(bookIDs, bookIDsOf(found)))
		}
		if err := CheckStock(found, demand); err != nil {
			return statusResult{}, err
		}

		// 5. 扣减送达订单的库存(在状态更新之前)
		delivered, err = uc.deliver(ctx, found, delivering, AggregateDemand(deliverBooks...))
		if err != nil {
			return statusResult{}, err
		}
	}

	// 6. 批量更新状态
	if err := uc.orderRepo.BulkUpdateStatus(ctx, changes); err != nil {
		return statusResult{}, err
	}

	// 7. 读回更新后的订单
	saved, err := uc.orderRepo.FindByOrderIDs(ctx, ids)
	if err != nil {
		return statusResult{}, err
	}
	return statusResult{orders: inRequestOrder(saved, ids), delivered: delivered}, nil
}

// deliver 扣减库存并写入库存日志
// 每个(订单, 图书)一条日志,变更前后库存按订单顺序依次计算
func (uc *UpdateOrderStatusUseCase) deliver(ctx context.Context, locked []*book.Book, delivering []*order.Order, demand map[string]int) (int, error) {
	if len(demand) == 0 {
		return 0, nil
	}

	total := 0
	for _, bookID := range DistinctBookIDs(demand) {
		if err := uc.bookRepo.DecrementStock(ctx, bookID, demand[bookID]); err != nil {
			return 0, err
		}
		total += demand[bookID]
	}

	running := make(map[string]int, len(locked))
	for _, b := range locked {
		running[b.BookID] = b.StockCount
	}

	var logs []*book.StockLog
	for _, o := range delivering {
		for _, bookID := range o.Books.BookIDs() {
			qty := o.Books[bookID]
			logs = append(logs, book.NewDeliverLog(bookID, o.OrderID, qty, running[bookID]))
			running[bookID] -= qty
		}
	}
	if err := uc.bookRepo.AppendStockLogs(ctx, logs); err != nil {
		return 0, err
	}

	return total, nil
}
