package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. BookID是业务唯一标识(字符串),ID是数据库自增主键
// 2. StockCount是当前可用库存,只在订单送达时扣减
// 3. Deleted表示已下架(软删除),下架图书对下单/发货都视为不存在
type Book struct {
	ID         uint
	BookID     string // 图书业务ID
	Title      string // 书名
	StockCount int    // 库存数量
	Deleted    bool   // 是否已下架
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(bookID, title string, stock int) *Book {
	now := time.Now()
	return &Book{
		BookID:     bookID,
		Title:      title,
		StockCount: stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasStock 库存是否足够
func (b *Book) HasStock(quantity int) bool {
	return b.StockCount >= quantity
}

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeDeliver ChangeType = "DELIVER" // 订单送达扣减
	ChangeTypeRestock ChangeType = "RESTOCK" // 补货
)

// StockLog 库存变更日志
// 教学要点:
// 1. 只增不改(Append-Only),与扣减在同一事务中写入
// 2. 记录变更前后库存,便于对账和排查
// 3. 每个(订单, 图书)一条记录
type StockLog struct {
	ID          uint
	BookID      string
	OrderID     string
	ChangeType  ChangeType
	Quantity    int // 正数=增加,负数=减少
	BeforeStock int
	AfterStock  int
	CreatedAt   time.Time
}

// NewDeliverLog 创建送达扣减日志
func NewDeliverLog(bookID, orderID string, quantity, before int) *StockLog {
	return &StockLog{
		BookID:      bookID,
		OrderID:     orderID,
		ChangeType:  ChangeTypeDeliver,
		Quantity:    -quantity,
		BeforeStock: before,
		AfterStock:  before - quantity,
		CreatedAt:   time.Now(),
	}
}
