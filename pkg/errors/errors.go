package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息，可以带上具体的ID、数量等细节
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 领域层的预定义错误只是"模板"，实际返回时会通过Newf附带细节，
// errors.Is(err, order.ErrOrderNotFound)依然成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 基于预定义错误创建带细节的副本（保留错误码）
//
//	return apperrors.Newf(order.ErrOrderNotFound, "订单不存在: %v", missing)
func Newf(base *AppError, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 用指定错误码包装底层错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、事务冲突）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeTxConflict    = 50003 // 事务冲突（死锁、锁等待超时、并发修改、提交失败），可重试

	// 资源错误（40400-40499）
	ErrCodeNotFound      = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound  = 40401 // 用户不存在
	ErrCodeBookNotFound  = 40402 // 图书不存在
	ErrCodeOrderNotFound = 40403 // 订单不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError     = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock = 40001 // 库存不足
	ErrCodeDuplicateEntry    = 40009 // 重复记录(通用)
	ErrCodeOrderDelivered    = 40010 // 订单已送达（终态），不允许再变更

	// 参数错误（40900-40999）
	ErrCodeInvalidParams     = 40900 // 参数错误
	ErrCodeBindError         = 40901 // 参数绑定失败
	ErrCodeEmptyBatch        = 40902 // 批量请求为空
	ErrCodeMissingUserID     = 40903 // 缺少user_id
	ErrCodeInvalidQuantity   = 40904 // 数量不合法
	ErrCodeInvalidStatus     = 40905 // 订单状态值不合法
	ErrCodeInvalidOrderItems = 40907 // 订单明细为空
	ErrCodeMissingBookID     = 40908 // 缺少book_id
	ErrCodeMissingOrderID    = 40909 // 缺少order_id
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrTxConflict    = New(ErrCodeTxConflict, "事务冲突，请稍后重试")

	// 资源不存在
	ErrNotFound = New(ErrCodeNotFound, "资源不存在")

	// 业务规则
	ErrInsufficientStock = New(ErrCodeInsufficientStock, "库存不足")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 错误分类
// =========================================

// Kind 错误类别，调用方按类别决定如何处理
type Kind int

const (
	KindInternal          Kind = iota // 未分类的系统错误
	KindValidation                    // 请求本身不合法
	KindNotFound                      // 引用的用户/图书/订单不存在
	KindConflict                      // 与当前状态冲突（如订单已送达）
	KindInsufficientStock             // 库存不足
	KindTransaction                   // 事务失败，可重试
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindInsufficientStock:
		return "InsufficientStockError"
	case KindTransaction:
		return "TransactionError"
	default:
		return "InternalError"
	}
}

// KindOf 根据错误码区间判断错误类别
func KindOf(err error) Kind {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return KindInternal
	}

	switch code := appErr.Code; {
	case code >= 40900 && code <= 40999:
		return KindValidation
	case code >= 40400 && code <= 40499:
		return KindNotFound
	case code == ErrCodeInsufficientStock:
		return KindInsufficientStock
	case code == ErrCodeOrderDelivered, code == ErrCodeDuplicateEntry:
		return KindConflict
	case code == ErrCodeTxConflict:
		return KindTransaction
	default:
		return KindInternal
	}
}

// IsTxConflict 是否为可重试的事务错误
// 注意：事务执行器只对这一类错误重试
func IsTxConflict(err error) bool {
	return KindOf(err) == KindTransaction
}

// HTTPStatus 错误类别 → HTTP状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	case KindTransaction:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
