package order

import (
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrOrderDelivered 订单已送达,不允许再变更状态
	ErrOrderDelivered = apperrors.New(apperrors.ErrCodeOrderDelivered, "订单已送达,不允许变更")

	// ErrEmptyBatch 批量请求为空
	ErrEmptyBatch = apperrors.New(apperrors.ErrCodeEmptyBatch, "请求中至少包含一个订单")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidOrderItems, "订单至少包含一本图书")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "购买数量必须大于0")

	// ErrMissingUserID 缺少user_id
	ErrMissingUserID = apperrors.New(apperrors.ErrCodeMissingUserID, "user_id不能为空")

	// ErrMissingBookID 缺少book_id
	ErrMissingBookID = apperrors.New(apperrors.ErrCodeMissingBookID, "book_id不能为空")

	// ErrMissingOrderID 缺少order_id
	ErrMissingOrderID = apperrors.New(apperrors.ErrCodeMissingOrderID, "order_id不能为空")

	// ErrInvalidStatus 非法的订单状态值
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidStatus, "订单状态不合法")

	// ErrConcurrentModification 批量更新命中行数不符(订单被并发修改)
	ErrConcurrentModification = apperrors.New(apperrors.ErrCodeTxConflict, "订单已被并发修改")
)
