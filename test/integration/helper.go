//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookorder/internal/application/book"
	apporder "github.com/xiebiao/bookorder/internal/application/order"
	appuser "github.com/xiebiao/bookorder/internal/application/user"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/messaging"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookorder/internal/interface/http/handler"
	"github.com/xiebiao/bookorder/internal/interface/http/router"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// 集成测试:真实的MySQL 8和Redis(testcontainers),HTTP走httptest.Server
// 运行: go test -tags=integration ./test/integration/...

// Timeout HTTP请求超时时间
const Timeout = 30 * time.Second

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OrderData 订单响应数据
type OrderData struct {
	OrderID string         `json:"order_id"`
	UserID  string         `json:"user_id"`
	Books   map[string]int `json:"books"`
	Status  string         `json:"status"`
}

// StockLogData 库存流水
type StockLogData struct {
	OrderID     string `json:"order_id"`
	Quantity    int    `json:"quantity"`
	BeforeStock int    `json:"before_stock"`
	AfterStock  int    `json:"after_stock"`
}

// Server 一套独立的测试环境
type Server struct {
	BaseURL string
	Config  *config.Config
	DB      *gorm.DB
}

// startContainer 启动容器,返回唯一暴露端口映射后的地址
func startContainer(t *testing.T, req testcontainers.ContainerRequest) (string, int) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(endpoint)
	require.NoError(t, err)

	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

// StartServer 启动MySQL、Redis和完整的HTTP服务
func StartServer(t *testing.T) *Server {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	mysqlHost, mysqlPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "root",
			"MYSQL_DATABASE":      "bookorder",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(2 * time.Minute),
	})

	redisHost, redisPort := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database = config.DatabaseConfig{
		Driver:          "mysql",
		Host:            mysqlHost,
		Port:            mysqlPort,
		User:            "root",
		Password:        "root",
		DBName:          "bookorder",
		Charset:         "utf8mb4",
		ParseTime:       true,
		Loc:             "Local",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
	cfg.Redis = config.RedisConfig{Host: redisHost, Port: redisPort, PoolSize: 10}
	cfg.Cache = config.CacheConfig{Enabled: true, OrderTTL: time.Minute}
	cfg.Transaction = config.TransactionConfig{MaxRetries: 3, RetryBackoff: 50 * time.Millisecond}

	log := zap.NewNop()
	db, err := mysql.NewDB(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	client, err := redis.NewClient(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	orderRepo := mysql.NewOrderRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	userRepo := mysql.NewUserRepository(db)
	runner := transaction.NewRunner(mysql.NewTxManager(db), transaction.Options{
		MaxRetries: cfg.Transaction.MaxRetries,
		Backoff:    cfg.Transaction.RetryBackoff,
	}, log)
	cache := redis.NewOrderCache(client, cfg)
	events := messaging.NopPublisher{}

	engine := router.New(cfg, router.Handlers{
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrdersUseCase(orderRepo, bookRepo, userRepo, runner, cache, events, log),
			apporder.NewUpdateOrderStatusUseCase(orderRepo, bookRepo, runner, cache, events, log),
			apporder.NewGetOrderUseCase(orderRepo, cache, log),
			apporder.NewListUserOrdersUseCase(orderRepo),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(bookRepo, log),
			appbook.NewDelistBookUseCase(bookRepo, log),
			appbook.NewListStockLogsUseCase(bookRepo),
		),
		User: handler.NewUserHandler(appuser.NewRegisterUseCase(userRepo, log)),
	}, log)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &Server{BaseURL: srv.URL + "/api/v1", Config: cfg, DB: db}
}

// Do 发送请求并解析统一响应
func (s *Server) Do(t *testing.T, method, path string, data interface{}) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	result.Status = resp.StatusCode
	return &result
}

// RegisterUser 登记测试用户
func (s *Server) RegisterUser(t *testing.T, userID string) {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/users", map[string]string{"user_id": userID, "username": userID})
	require.Equal(t, http.StatusCreated, resp.Status, "登记用户失败: %s", resp.Message)
}

// PublishBook 上架测试图书
func (s *Server) PublishBook(t *testing.T, bookID string, stock int) {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/books", map[string]interface{}{
		"book_id": bookID,
		"title":   fmt.Sprintf("《%s》", bookID),
		"stock":   stock,
	})
	require.Equal(t, http.StatusCreated, resp.Status, "图书上架失败: %s", resp.Message)
}

// CreateOrder 下单并返回订单号
func (s *Server) CreateOrder(t *testing.T, userID string, books map[string]int) string {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/orders", map[string]interface{}{
		"orders": []map[string]interface{}{{"user_id": userID, "books": books}},
	})
	require.Equal(t, http.StatusCreated, resp.Status, "下单失败: %s", resp.Message)
	return DecodeOrders(t, resp)[0].OrderID
}

// Deliver 把订单更新为DELIVERED
func (s *Server) Deliver(t *testing.T, orderIDs ...string) *Response {
	t.Helper()
	changes := make([]map[string]string, len(orderIDs))
	for i, id := range orderIDs {
		changes[i] = map[string]string{"order_id": id, "status": "DELIVERED"}
	}
	return s.Do(t, http.MethodPatch, "/orders/status", map[string]interface{}{"orders": changes})
}

// StockLogs 查询库存流水
func (s *Server) StockLogs(t *testing.T, bookID string) []StockLogData {
	t.Helper()
	resp := s.Do(t, http.MethodGet, "/books/"+bookID+"/stock-logs", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var logs []StockLogData
	require.NoError(t, json.Unmarshal(resp.Data, &logs))
	return logs
}

// Stock 直接查询数据库中的库存
func (s *Server) Stock(t *testing.T, bookID string) int {
	t.Helper()
	var stock int
	require.NoError(t, s.DB.Unscoped().Model(&mysql.BookModel{}).
		Where("book_id = ?", bookID).Pluck("stock_count", &stock).Error)
	return stock
}

// DecodeOrders 解析订单列表
func DecodeOrders(t *testing.T, resp *Response) []OrderData {
	t.Helper()
	var orders []OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &orders), "解析订单失败")
	return orders
}
