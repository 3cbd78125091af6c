package book

import (
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在(包括已下架)
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrBookIDDuplicate book_id已存在
	ErrBookIDDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "book_id已存在")

	// ErrStockConflict 条件扣减未命中(库存被并发修改)
	ErrStockConflict = apperrors.New(apperrors.ErrCodeTxConflict, "库存已被并发修改")
)
