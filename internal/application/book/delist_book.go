package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/book"
)

// DelistBookUseCase 图书下架用例
// 下架是软删除:已有订单不受影响,但之后下单、送达都会把这本书视为不存在
type DelistBookUseCase struct {
	bookRepo book.Repository
	logger   *zap.Logger
}

// NewDelistBookUseCase 创建下架用例
func NewDelistBookUseCase(bookRepo book.Repository, logger *zap.Logger) *DelistBookUseCase {
	return &DelistBookUseCase{bookRepo: bookRepo, logger: logger}
}

// Execute 执行下架
func (uc *DelistBookUseCase) Execute(ctx context.Context, bookID string) error {
	if err := uc.bookRepo.SoftDelete(ctx, bookID); err != nil {
		return err
	}
	uc.logger.Info("图书已下架", zap.String("book_id", bookID))
	return nil
}

// ListStockLogsUseCase 查询图书库存流水
type ListStockLogsUseCase struct {
	bookRepo book.Repository
}

// NewListStockLogsUseCase 创建库存流水查询用例
func NewListStockLogsUseCase(bookRepo book.Repository) *ListStockLogsUseCase {
	return &ListStockLogsUseCase{bookRepo: bookRepo}
}

// Execute 按时间正序返回
func (uc *ListStockLogsUseCase) Execute(ctx context.Context, bookID string) ([]*book.StockLog, error) {
	return uc.bookRepo.ListStockLogs(ctx, bookID)
}
