package order

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status 订单状态
// 教学要点:
// 1. 使用int类型存储(节省空间,便于索引),数值与历史数据保持一致
// 2. JSON输出为大写名称(PENDING等),输入兼容名称和数字
// 3. DELIVERED是唯一的终态,进入后不允许任何变更
type Status int

const (
	StatusPending   Status = 0 // 待确认
	StatusConfirmed Status = 1 // 已确认
	StatusCancelled Status = 2 // 已取消
	StatusDelivered Status = 3 // 已送达(终态)
)

var statusNames = map[Status]string{
	StatusPending:   "PENDING",
	StatusConfirmed: "CONFIRMED",
	StatusCancelled: "CANCELLED",
	StatusDelivered: "DELIVERED",
}

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// IsValid 是否为已定义的状态值
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == StatusDelivered
}

// ParseStatus 解析状态名称(大小写不敏感)
func ParseStatus(name string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == upper {
			return s, nil
		}
	}
	return 0, ErrInvalidStatus
}

// MarshalJSON 输出状态名称
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 兼容 "DELIVERED" 和 3 两种写法
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseStatus(name)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	var num int
	if err := json.Unmarshal(data, &num); err != nil {
		return ErrInvalidStatus
	}
	if !Status(num).IsValid() {
		return ErrInvalidStatus
	}
	*s = Status(num)
	return nil
}

// Books 订单中的图书及数量(book_id → quantity)
type Books map[string]int

// Validate 校验图书明细
// 业务规则:
// 1. 至少包含一本图书
// 2. book_id不能为空
// 3. 每本图书数量必须大于0
func (b Books) Validate() error {
	if len(b) == 0 {
		return ErrInvalidOrderItems
	}
	for bookID, qty := range b {
		if strings.TrimSpace(bookID) == "" {
			return ErrMissingBookID
		}
		if qty <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// BookIDs 返回排序后的book_id列表(保证加锁/输出顺序稳定)
func (b Books) BookIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. OrderID是业务主键(UUID),创建后不可变
// 2. Books是聚合内的明细,持久化时拆成order_items行
// 3. 订单创建不扣库存,只有变为DELIVERED时才扣减
type Order struct {
	ID        uint
	OrderID   string // 订单号(业务主键,全局唯一)
	UserID    string // 下单用户
	Books     Books  // 图书明细
	Status    Status // 订单状态
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为PENDING,订单号在此生成
func NewOrder(userID string, books Books) *Order {
	now := time.Now()
	copied := make(Books, len(books))
	for id, qty := range books {
		copied[id] = qty
	}
	return &Order{
		OrderID:   GenerateOrderID(),
		UserID:    userID,
		Books:     copied,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 只限制终态:非DELIVERED的订单可以变更为任意合法状态
func (o *Order) CanTransitionTo(target Status) bool {
	return !o.Status.IsTerminal() && target.IsValid()
}

// CreateRequest 单个下单请求
type CreateRequest struct {
	UserID string
	Books  Books
}

// Validate 校验下单请求
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	return r.Books.Validate()
}

// StatusChange 单个状态变更请求
type StatusChange struct {
	OrderID string
	Status  Status
}

// Validate 校验状态变更请求
func (c StatusChange) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return ErrMissingOrderID
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
