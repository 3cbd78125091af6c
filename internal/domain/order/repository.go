package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 所有批量方法对"部分找到"不报错,由调用方比较数量判断缺失
type Repository interface {
	// BulkCreate 批量创建订单(包含明细),回填自增ID
	BulkCreate(ctx context.Context, orders []*Order) error

	// FindByOrderIDs 按订单号批量查询
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]*Order, error)

	// LockByOrderIDs 按订单号批量查询并加行锁(SELECT ... FOR UPDATE)
	// 必须在事务中调用
	LockByOrderIDs(ctx context.Context, orderIDs []string) ([]*Order, error)

	// FindByUserIDs 查询用户的所有订单(按创建时间倒序)
	FindByUserIDs(ctx context.Context, userIDs []string) ([]*Order, error)

	// BulkUpdateStatus 批量更新状态
	// 条件更新:只更新尚未DELIVERED的订单,实际更新行数不符时返回事务冲突
	BulkUpdateStatus(ctx context.Context, changes []StatusChange) error
}
