package mysql

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/xiebiao/bookorder/internal/infrastructure/config"
)

// slowQueryThreshold 超过该耗时的SQL按Warn记录
const slowQueryThreshold = 200 * time.Millisecond

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，生产环境使用MySQL
// 2. database.driver=sqlite时使用纯Go实现的SQLite（本地开发、单元测试）
// 3. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 4. SQL日志走zap：开发环境打印所有SQL，其他环境只记录慢查询和错误
// 5. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. 选择方言
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	// 3. 连接数据库
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(cfg, log),
		NowFunc: func() time.Time { return time.Now() },
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// SQLite只允许一个写者，单连接让事务串行执行
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	// 6. 自动迁移表结构
	// 注意：生产环境应使用版本化的迁移脚本
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// newGormLogger GORM日志适配到zap
func newGormLogger(cfg *config.Config, log *zap.Logger) gormlogger.Interface {
	gl := zapgorm2.New(log.Named("gorm"))
	gl.SlowThreshold = slowQueryThreshold
	gl.IgnoreRecordNotFoundError = true // 记录不存在由仓储转为业务错误

	level := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		level = gormlogger.Info
	}
	return gl.LogMode(level)
}

// AutoMigrate 自动迁移表结构
// 注意：这里需要使用GORM的模型定义（带tag），不是domain层的实体
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&StockLogModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"uniqueIndex;size:64;not null;comment:用户业务ID"`
	Username  string    `gorm:"size:100;comment:用户名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. book_id有唯一索引,是业务主键
// 2. DeletedAt实现软删除,GORM查询自动过滤已下架图书
// 3. stock_count只通过条件UPDATE扣减,不走Save覆盖
type BookModel struct {
	ID         uint           `gorm:"primaryKey"`
	BookID     string         `gorm:"uniqueIndex;size:64;not null;comment:图书业务ID"`
	Title      string         `gorm:"size:200;comment:书名"`
	StockCount int            `gorm:"not null;default:0;comment:库存数量"`
	CreatedAt  time.Time      `gorm:"comment:创建时间"`
	UpdatedAt  time.Time      `gorm:"comment:更新时间"`
	DeletedAt  gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// StockLogModel 库存变更日志
// 只增不改,与库存扣减在同一事务中写入
type StockLogModel struct {
	ID          uint      `gorm:"primaryKey"`
	BookID      string    `gorm:"index;size:64;not null;comment:图书业务ID"`
	OrderID     string    `gorm:"index;size:36;comment:关联订单号"`
	ChangeType  string    `gorm:"size:20;not null;comment:变更类型"`
	Quantity    int       `gorm:"not null;comment:变更数量(负数=减少)"`
	BeforeStock int       `gorm:"not null;comment:变更前库存"`
	AfterStock  int       `gorm:"not null;comment:变更后库存"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (StockLogModel) TableName() string {
	return "stock_logs"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderItemModel是一对多关系(orders.id ← order_items.order_ref_id)
// 2. OrderID(UUID)有唯一索引,是业务主键
// 3. Status使用int存储(0待确认1已确认2已取消3已送达)
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	OrderID   string           `gorm:"uniqueIndex;size:36;not null;comment:订单号(UUID)"`
	UserID    string           `gorm:"index;size:64;not null;comment:下单用户ID"`
	Status    int              `gorm:"index;not null;comment:订单状态(0待确认1已确认2已取消3已送达)"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderRefID"`
	CreatedAt time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
type OrderItemModel struct {
	ID         uint   `gorm:"primaryKey"`
	OrderRefID uint   `gorm:"index;not null;comment:订单自增ID"`
	BookID     string `gorm:"index;size:64;not null;comment:图书业务ID"`
	Quantity   int    `gorm:"not null;comment:购买数量"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
