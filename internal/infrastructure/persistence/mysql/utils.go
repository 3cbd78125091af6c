package mysql

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// MySQL错误码
const (
	mysqlErrDuplicateEntry  = 1062 // Duplicate entry 'xxx' for key 'yyy'
	mysqlErrLockWaitTimeout = 1205 // Lock wait timeout exceeded
	mysqlErrDeadlock        = 1213 // Deadlock found when trying to get lock
)

// isDuplicateError 判断是否为唯一索引冲突错误
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	// GORM v2的错误判断(需开启TranslateError)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}
	// 兼容检查:SQLite的UNIQUE约束错误
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isTxConflictError 判断是否为可重试的并发冲突
// 1. MySQL死锁(1213)、锁等待超时(1205):InnoDB已回滚事务,整体重试即可
// 2. SQLite的database is locked / SQLITE_BUSY
func isTxConflictError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDeadlock || myErr.Number == mysqlErrLockWaitTimeout
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// wrapDBError 数据库错误 → 业务错误
// 并发冲突转换为ErrCodeTxConflict(可重试),其他为ErrCodeDatabaseError
func wrapDBError(err error, message string) error {
	if isTxConflictError(err) {
		return apperrors.WrapCode(err, apperrors.ErrCodeTxConflict, message)
	}
	return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, message)
}
