package order

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/internal/domain/user"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]order.Event
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]order.Event)}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, events []order.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[routingKey] = append(p.events[routingKey], events...)
	return p.err
}

func (p *recordingPublisher) count(routingKey string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[routingKey])
}

// memoryCache 基于map的订单缓存
type memoryCache struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	gets   int
	err    error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{orders: make(map[string]*order.Order)}
}

func (c *memoryCache) Get(_ context.Context, orderID string) (*order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, c.err
	}
	return c.orders[orderID], nil
}

func (c *memoryCache) SetMany(_ context.Context, orders []*order.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range orders {
		c.orders[o.OrderID] = o
	}
	return c.err
}

func (c *memoryCache) DeleteMany(_ context.Context, orderIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range orderIDs {
		delete(c.orders, id)
	}
	return c.err
}

func (c *memoryCache) has(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.orders[orderID]
	return ok
}

// flakyTx 前failures次提交模拟写冲突(回滚后返回事务错误)
type flakyTx struct {
	inner    transaction.Transactor
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakyTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.inner.Transaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.attempts++
		if f.failures > 0 {
			f.failures--
			return apperrors.New(apperrors.ErrCodeTxConflict, "write conflict")
		}
		return nil
	})
}

type fixture struct {
	db     *gorm.DB
	orders order.Repository
	books  book.Repository
	users  user.Repository
	tx     *mysql.TxManager
	cache  *memoryCache
	events *recordingPublisher

	create *CreateOrdersUseCase
	update *UpdateOrderStatusUseCase
	get    *GetOrderUseCase
	list   *ListUserOrdersUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "orders.db")

	db, err := mysql.NewDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:     db,
		orders: mysql.NewOrderRepository(db),
		books:  mysql.NewBookRepository(db),
		users:  mysql.NewUserRepository(db),
		tx:     mysql.NewTxManager(db),
		cache:  newMemoryCache(),
		events: newRecordingPublisher(),
	}
	f.wire(f.tx, 0)
	return f
}

// wire 用指定的Transactor和重试次数重新组装用例
func (f *fixture) wire(tx transaction.Transactor, maxRetries int) {
	runner := transaction.NewRunner(tx, transaction.Options{MaxRetries: maxRetries, Backoff: time.Millisecond}, zap.NewNop())
	f.create = NewCreateOrdersUseCase(f.orders, f.books, f.users, runner, f.cache, f.events, zap.NewNop())
	f.update = NewUpdateOrderStatusUseCase(f.orders, f.books, runner, f.cache, f.events, zap.NewNop())
	f.get = NewGetOrderUseCase(f.orders, f.cache, zap.NewNop())
	f.list = NewListUserOrdersUseCase(f.orders)
}

func (f *fixture) seedUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.users.Create(context.Background(), user.NewUser(id, id)))
	}
}

func (f *fixture) seedBook(t *testing.T, id string, stock int) {
	t.Helper()
	require.NoError(t, f.books.Create(context.Background(), book.NewBook(id, id, stock)))
}

func (f *fixture) stock(t *testing.T, bookID string) int {
	t.Helper()
	var s int
	require.NoError(t, f.db.Unscoped().Model(&mysql.BookModel{}).
		Where("book_id = ?", bookID).Pluck("stock_count", &s).Error)
	return s
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&mysql.OrderModel{}).Count(&n).Error)
	return n
}

func (f *fixture) mustCreate(t *testing.T, reqs ...order.CreateRequest) []*order.Order {
	t.Helper()
	created, err := f.create.Execute(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, created, len(reqs))
	return created
}
