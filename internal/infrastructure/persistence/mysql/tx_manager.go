package mysql

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// txKey context中事务DB的key(私有类型,避免与其他包冲突)
type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
// 4. 负责把"事务没能完成"的错误统一转换为ErrCodeTxConflict,供上层决定是否重试
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 教学要点:
// 1. fn函数内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. fn自己的错误原样返回;BEGIN/COMMIT失败转换为事务冲突
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    books, err := bookRepo.LockActiveByBookIDs(ctx, ids)
//	    if err != nil {
//	        return err // 自动回滚
//	    }
//	    return bookRepo.DecrementStock(ctx, ids[0], 1)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db := m.db.WithContext(ctx)
	if outer, ok := txFromContext(ctx); ok {
		db = outer
	}

	var fnErr error
	err := db.Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中
		// Repository的getDB方法会从context提取事务DB
		fnErr = fn(context.WithValue(ctx, txKey{}, tx))
		return fnErr
	})

	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		return fnErr
	default:
		return apperrors.WrapCode(err, apperrors.ErrCodeTxConflict, "事务提交失败")
	}
}

// txFromContext 提取context中的事务DB
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// dbFromContext 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制,所有Repository都通过它访问数据库
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db.WithContext(ctx)
}
