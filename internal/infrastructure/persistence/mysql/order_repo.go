package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookorder/internal/domain/order"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// BulkCreate 批量创建订单
// 教学要点:
// 1. 一次Create切片,GORM生成一条多值INSERT,再批量写入关联的Items
// 2. 必须在事务中调用(通过getDB从context获取事务DB),否则订单和明细可能只写入一半
func (r *orderRepository) BulkCreate(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	// 1. 领域实体 → GORM模型
	models := make([]*OrderModel, len(orders))
	for i, o := range orders {
		models[i] = toOrderModel(o)
	}

	// 2. 插入数据库(包含订单明细)
	if err := r.getDB(ctx).Create(&models).Error; err != nil {
		return wrapDBError(err, "批量创建订单失败")
	}

	// 3. 回填自增ID
	for i := range orders {
		orders[i].ID = models[i].ID
	}
	return nil
}

// FindByOrderIDs 按订单号批量查询
// Preload("Items")会执行:
// 1. SELECT * FROM orders WHERE order_id IN (?)
// 2. SELECT * FROM order_items WHERE order_ref_id IN (?)
func (r *orderRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]*order.Order, error) {
	return r.findByOrderIDs(r.getDB(ctx), orderIDs, "查询订单失败")
}

// LockByOrderIDs 悲观锁批量查询订单
// 按order_id排序加锁,与并发的发货请求保持相同的加锁顺序
func (r *orderRepository) LockByOrderIDs(ctx context.Context, orderIDs []string) ([]*order.Order, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findByOrderIDs(db, orderIDs, "锁定订单失败")
}

func (r *orderRepository) findByOrderIDs(db *gorm.DB, orderIDs []string, errMsg string) ([]*order.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var models []OrderModel
	err := db.Preload("Items").
		Where("order_id IN ?", orderIDs).
		Order("order_id").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, errMsg)
	}

	return toOrderEntities(models), nil
}

// FindByUserIDs 查询用户的订单列表(最新的在前)
func (r *orderRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]*order.Order, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var models []OrderModel
	err := r.getDB(ctx).Preload("Items").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询订单列表失败")
	}

	return toOrderEntities(models), nil
}

// BulkUpdateStatus 批量更新订单状态
// 教学要点:
// 1. 按目标状态分组,每组一条UPDATE ... WHERE order_id IN (?)
// 2. WHERE status <> DELIVERED 是终态的最后一道防线
// 3. 命中行数少于请求数,说明有订单在读取之后被其他事务改成了DELIVERED
//
// 注意:MySQL默认返回"实际变更"的行数,DSN中开启clientFoundRows后返回"匹配"的行数,
// 否则状态未变的订单会被误判为冲突
func (r *orderRepository) BulkUpdateStatus(ctx context.Context, changes []order.StatusChange) error {
	if len(changes) == 0 {
		return nil
	}

	// 1. 按目标状态分组(保持首次出现的顺序)
	groups := make(map[order.Status][]string)
	var statuses []order.Status
	for _, c := range changes {
		if _, ok := groups[c.Status]; !ok {
			statuses = append(statuses, c.Status)
		}
		groups[c.Status] = append(groups[c.Status], c.OrderID)
	}

	db := r.getDB(ctx)
	now := time.Now()

	// 2. 逐组条件更新
	for _, status := range statuses {
		ids := groups[status]
		result := db.Model(&OrderModel{}).
			Where("order_id IN ?", ids).
			Where("status <> ?", int(order.StatusDelivered)).
			Updates(map[string]interface{}{
				"status":     int(status),
				"updated_at": now,
			})

		if result.Error != nil {
			return wrapDBError(result.Error, "批量更新订单状态失败")
		}

		// 3. 检查命中行数
		if result.RowsAffected != int64(len(ids)) {
			return order.ErrConcurrentModification
		}
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
// 明细按book_id排序写入,读出时顺序稳定
func toOrderModel(o *order.Order) *OrderModel {
	bookIDs := o.Books.BookIDs()
	items := make([]OrderItemModel, len(bookIDs))
	for i, bookID := range bookIDs {
		items[i] = OrderItemModel{
			BookID:   bookID,
			Quantity: o.Books[bookID],
		}
	}

	return &OrderModel{
		ID:        o.ID,
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Status:    int(o.Status),
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	books := make(order.Books, len(model.Items))
	for _, item := range model.Items {
		books[item.BookID] += item.Quantity
	}

	return &order.Order{
		ID:        model.ID,
		OrderID:   model.OrderID,
		UserID:    model.UserID,
		Books:     books,
		Status:    order.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toOrderEntities(models []OrderModel) []*order.Order {
	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
