package dto

import (
	"time"

	"github.com/xiebiao/bookorder/internal/domain/order"
)

// CreateOrdersRequest HTTP批量下单请求
// books直接反序列化为map[string]int,数量合法性由领域层校验
type CreateOrdersRequest struct {
	Orders []CreateOrderItem `json:"orders" binding:"required,min=1,dive"`
}

// CreateOrderItem 单个订单
type CreateOrderItem struct {
	UserID string         `json:"user_id" binding:"required" example:"user_1"`
	Books  map[string]int `json:"books" binding:"required" example:"book_a:3"`
}

// ToDomain 转换为领域层请求
func (r CreateOrdersRequest) ToDomain() []order.CreateRequest {
	reqs := make([]order.CreateRequest, len(r.Orders))
	for i, o := range r.Orders {
		reqs[i] = order.CreateRequest{UserID: o.UserID, Books: order.Books(o.Books)}
	}
	return reqs
}

// UpdateOrderStatusRequest HTTP批量更新状态请求
type UpdateOrderStatusRequest struct {
	Orders []StatusChangeItem `json:"orders" binding:"required,min=1,dive"`
}

// StatusChangeItem 单个状态变更
// status支持名称("DELIVERED")和数字(3)
type StatusChangeItem struct {
	OrderID string       `json:"order_id" binding:"required" example:"0b6f1c1e-2d5a-4f43-9a55-3f1d7d0c9a11"`
	Status  *order.Status `json:"status" binding:"required" swaggertype:"string" enums:"PENDING,CONFIRMED,CANCELLED,DELIVERED" example:"DELIVERED"`
}

// ToDomain 转换为领域层请求
func (r UpdateOrderStatusRequest) ToDomain() []order.StatusChange {
	changes := make([]order.StatusChange, len(r.Orders))
	for i, c := range r.Orders {
		changes[i] = order.StatusChange{OrderID: c.OrderID, Status: *c.Status}
	}
	return changes
}

// OrderResponse 订单响应
type OrderResponse struct {
	OrderID   string         `json:"order_id" example:"0b6f1c1e-2d5a-4f43-9a55-3f1d7d0c9a11"`
	UserID    string         `json:"user_id" example:"user_1"`
	Books     map[string]int `json:"books"`
	Status    string         `json:"status" example:"PENDING"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewOrderResponse 领域实体 → HTTP响应
func NewOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Books:     o.Books,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// NewOrderListResponse 批量转换
func NewOrderListResponse(orders []*order.Order) []OrderResponse {
	list := make([]OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = NewOrderResponse(o)
	}
	return list
}
