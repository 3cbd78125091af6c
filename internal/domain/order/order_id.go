package order

import (
	"github.com/google/uuid"
)

// GenerateOrderID 生成订单号
// 教学要点:订单号设计原则
// 1. 全局唯一(避免冲突)
// 2. 不可预测(防止恶意遍历)
// 3. 不依赖数据库自增(批量插入前就能拿到)
//
// 格式:UUID v4,如 3f2504e0-4f89-41d3-9a0c-0305e82c3301
func GenerateOrderID() string {
	return uuid.NewString()
}
