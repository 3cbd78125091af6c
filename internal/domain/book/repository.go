package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于替换实现(测试用SQLite,生产用MySQL)
// 3. 批量查询只返回未下架的图书,缺失由调用方比较数量判断
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindActiveByBookIDs 批量查询未下架图书
	FindActiveByBookIDs(ctx context.Context, bookIDs []string) ([]*Book, error)

	// LockActiveByBookIDs 批量查询未下架图书并加行锁(SELECT ... FOR UPDATE)
	// 必须在事务中调用;按book_id排序加锁,降低死锁概率
	LockActiveByBookIDs(ctx context.Context, bookIDs []string) ([]*Book, error)

	// DecrementStock 条件扣减库存
	// UPDATE books SET stock_count = stock_count - ? WHERE book_id = ? AND stock_count >= ?
	// 未命中任何行时返回ErrStockConflict(可重试)
	DecrementStock(ctx context.Context, bookID string, quantity int) error

	// AppendStockLogs 写入库存变更日志
	AppendStockLogs(ctx context.Context, logs []*StockLog) error

	// ListStockLogs 查询某本图书的库存日志(按时间正序)
	ListStockLogs(ctx context.Context, bookID string) ([]*StockLog, error)

	// SoftDelete 下架图书
	SoftDelete(ctx context.Context, bookID string) error
}
