package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookorder/internal/domain/book"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 软删除由GORM的DeletedAt自动过滤,已下架图书对所有查询不可见
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		BookID:     b.BookID,
		Title:      b.Title,
		StockCount: b.StockCount,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrBookIDDuplicate
		}
		return wrapDBError(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindActiveByBookIDs 批量查询未下架图书
func (r *bookRepository) FindActiveByBookIDs(ctx context.Context, bookIDs []string) ([]*book.Book, error) {
	return r.find(r.getDB(ctx), bookIDs, "查询图书失败")
}

// LockActiveByBookIDs 悲观锁批量查询图书
// 教学要点:
// 1. 必须使用getDB(ctx)从context获取事务DB,否则锁在语句结束时就释放了
// 2. ORDER BY book_id让并发事务按相同顺序加锁,降低死锁概率
// 3. SQLite没有行锁,方言会忽略FOR UPDATE,靠单连接串行化
func (r *bookRepository) LockActiveByBookIDs(ctx context.Context, bookIDs []string) ([]*book.Book, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.find(db, bookIDs, "锁定图书失败")
}

func (r *bookRepository) find(db *gorm.DB, bookIDs []string, errMsg string) ([]*book.Book, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}

	var models []BookModel
	if err := db.Where("book_id IN ?", bookIDs).Order("book_id").Find(&models).Error; err != nil {
		return nil, wrapDBError(err, errMsg)
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// DecrementStock 条件扣减库存(原子操作)
// UPDATE books SET stock_count = stock_count - ? WHERE book_id = ? AND stock_count >= ? AND deleted_at IS NULL
// 教学要点:
// 1. 扣减前已经在同一事务内检查过库存,这里的WHERE条件是最后一道防线
// 2. 未命中说明库存在检查之后被修改(或图书被下架),返回可重试的事务冲突
func (r *bookRepository) DecrementStock(ctx context.Context, bookID string, quantity int) error {
	result := r.getDB(ctx).Model(&BookModel{}).
		Where("book_id = ?", bookID).
		Where("stock_count >= ?", quantity). // 防止库存为负
		Updates(map[string]interface{}{
			"stock_count": gorm.Expr("stock_count - ?", quantity),
		})

	if result.Error != nil {
		return wrapDBError(result.Error, "扣减库存失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrStockConflict
	}

	return nil
}

// AppendStockLogs 写入库存变更日志
func (r *bookRepository) AppendStockLogs(ctx context.Context, logs []*book.StockLog) error {
	if len(logs) == 0 {
		return nil
	}

	models := make([]StockLogModel, len(logs))
	for i, l := range logs {
		models[i] = StockLogModel{
			BookID:      l.BookID,
			OrderID:     l.OrderID,
			ChangeType:  string(l.ChangeType),
			Quantity:    l.Quantity,
			BeforeStock: l.BeforeStock,
			AfterStock:  l.AfterStock,
			CreatedAt:   l.CreatedAt,
		}
	}

	if err := r.getDB(ctx).Create(&models).Error; err != nil {
		return wrapDBError(err, "写入库存日志失败")
	}

	for i := range models {
		logs[i].ID = models[i].ID
	}
	return nil
}

// ListStockLogs 查询某本图书的库存日志
func (r *bookRepository) ListStockLogs(ctx context.Context, bookID string) ([]*book.StockLog, error) {
	var models []StockLogModel
	err := r.getDB(ctx).Where("book_id = ?", bookID).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询库存日志失败")
	}

	logs := make([]*book.StockLog, len(models))
	for i, m := range models {
		logs[i] = &book.StockLog{
			ID:          m.ID,
			BookID:      m.BookID,
			OrderID:     m.OrderID,
			ChangeType:  book.ChangeType(m.ChangeType),
			Quantity:    m.Quantity,
			BeforeStock: m.BeforeStock,
			AfterStock:  m.AfterStock,
			CreatedAt:   m.CreatedAt,
		}
	}
	return logs, nil
}

// SoftDelete 下架图书(软删除)
func (r *bookRepository) SoftDelete(ctx context.Context, bookID string) error {
	result := r.getDB(ctx).Where("book_id = ?", bookID).Delete(&BookModel{})

	if result.Error != nil {
		return wrapDBError(result.Error, "下架图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:         model.ID,
		BookID:     model.BookID,
		Title:      model.Title,
		StockCount: model.StockCount,
		Deleted:    model.DeletedAt.Valid,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
