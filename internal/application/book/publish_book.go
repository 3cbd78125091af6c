package book

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/book"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 应用层负责用例编排,输入输出使用DTO,与HTTP层解耦
// 2. 上架时写入初始库存,之后库存只会因订单送达而减少
type PublishBookUseCase struct {
	bookRepo book.Repository
	logger   *zap.Logger
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookRepo book.Repository, logger *zap.Logger) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	BookID string // 图书业务ID
	Title  string // 书名
	Stock  int    // 初始库存
}

// Execute 执行上架用例
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*book.Book, error) {
	// 1. 参数校验
	if strings.TrimSpace(req.BookID) == "" {
		return nil, apperrors.Newf(apperrors.ErrInvalidParams, "book_id不能为空")
	}
	if req.Stock < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidParams, "库存不能为负数")
	}

	// 2. 持久化(book_id重复由唯一索引保证)
	b := book.NewBook(req.BookID, req.Title, req.Stock)
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	uc.logger.Info("图书上架成功", zap.String("book_id", b.BookID), zap.Int("stock", b.StockCount))
	return b, nil
}
