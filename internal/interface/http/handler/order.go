package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookorder/internal/application/order"
	"github.com/xiebiao/bookorder/internal/interface/http/dto"
	"github.com/xiebiao/bookorder/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrders *apporder.CreateOrdersUseCase
	updateStatus *apporder.UpdateOrderStatusUseCase
	getOrder     *apporder.GetOrderUseCase
	listOrders   *apporder.ListUserOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrders *apporder.CreateOrdersUseCase,
	updateStatus *apporder.UpdateOrderStatusUseCase,
	getOrder *apporder.GetOrderUseCase,
	listOrders *apporder.ListUserOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrders: createOrders,
		updateStatus: updateStatus,
		getOrder:     getOrder,
		listOrders:   listOrders,
	}
}

// CreateOrders 批量下单
// @Summary      批量下单
// @Description  一个请求创建多个订单。整批在一个事务中校验用户、图书和库存(按整批汇总),任何一个不满足则整批失败。下单不扣库存。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrdersRequest true "订单列表"
// @Success      201 {object} response.Response{data=[]dto.OrderResponse} "下单成功,订单状态为PENDING"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "用户或图书不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Failure      503 {object} response.Response "事务冲突,可重试"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrders(c *gin.Context) {
	var req dto.CreateOrdersRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.createOrders.Execute(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewOrderListResponse(created))
}

// UpdateOrderStatus 批量更新订单状态
// @Summary      批量更新订单状态
// @Description  DELIVERED是终态:批次中任何一个订单已送达则整批拒绝。目标为DELIVERED的订单在同一事务中扣减库存。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateOrderStatusRequest true "状态变更列表"
// @Success      200 {object} response.Response{data=[]dto.OrderResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "订单或图书不存在"
// @Failure      409 {object} response.Response "订单已送达或库存不足"
// @Failure      503 {object} response.Response "事务冲突,可重试"
// @Router       /api/v1/orders/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.updateStatus.Execute(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.NewOrderListResponse(updated))
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Param        order_id path string true "订单号"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{order_id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.getOrder.Execute(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.NewOrderResponse(o))
}

// ListUserOrders 用户订单列表
// @Summary      用户订单列表
// @Description  按创建时间倒序
// @Tags         订单
// @Produce      json
// @Param        user_id path string true "用户ID"
// @Success      200 {object} response.Response{data=[]dto.OrderResponse}
// @Router       /api/v1/users/{user_id}/orders [get]
func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	orders, err := h.listOrders.Execute(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.NewOrderListResponse(orders))
}
