package dto

import (
	"time"

	"github.com/xiebiao/bookorder/internal/domain/book"
)

// PublishBookRequest HTTP上架请求
type PublishBookRequest struct {
	BookID string `json:"book_id" binding:"required,max=64" example:"book_a"`
	Title  string `json:"title" binding:"max=200" example:"Go语言实战"`
	Stock  int    `json:"stock" binding:"min=0" example:"100"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	BookID     string    `json:"book_id" example:"book_a"`
	Title      string    `json:"title" example:"Go语言实战"`
	StockCount int       `json:"stock_count" example:"100"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBookResponse 领域实体 → HTTP响应
func NewBookResponse(b *book.Book) BookResponse {
	return BookResponse{
		BookID:     b.BookID,
		Title:      b.Title,
		StockCount: b.StockCount,
		CreatedAt:  b.CreatedAt,
	}
}

// StockLogResponse 库存流水
type StockLogResponse struct {
	OrderID     string    `json:"order_id"`
	ChangeType  string    `json:"change_type" example:"DELIVER"`
	Quantity    int       `json:"quantity" example:"-3"`
	BeforeStock int       `json:"before_stock" example:"5"`
	AfterStock  int       `json:"after_stock" example:"2"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewStockLogListResponse 批量转换
func NewStockLogListResponse(logs []*book.StockLog) []StockLogResponse {
	list := make([]StockLogResponse, len(logs))
	for i, l := range logs {
		list[i] = StockLogResponse{
			OrderID:     l.OrderID,
			ChangeType:  string(l.ChangeType),
			Quantity:    l.Quantity,
			BeforeStock: l.BeforeStock,
			AfterStock:  l.AfterStock,
			CreatedAt:   l.CreatedAt,
		}
	}
	return list
}
