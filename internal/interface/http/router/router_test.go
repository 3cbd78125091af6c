package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookorder/internal/application/book"
	apporder "github.com/xiebiao/bookorder/internal/application/order"
	appuser "github.com/xiebiao/bookorder/internal/application/user"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/messaging"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookorder/internal/interface/http/handler"
	"github.com/xiebiao/bookorder/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type orderData struct {
	OrderID string         `json:"order_id"`
	UserID  string         `json:"user_id"`
	Books   map[string]int `json:"books"`
	Status  string         `json:"status"`
}

type stockLogData struct {
	OrderID     string `json:"order_id"`
	Quantity    int    `json:"quantity"`
	BeforeStock int    `json:"before_stock"`
	AfterStock  int    `json:"after_stock"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "api.db")
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	log := zap.NewNop()
	db, err := mysql.NewDB(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	orderRepo := mysql.NewOrderRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	userRepo := mysql.NewUserRepository(db)
	runner := transaction.NewRunner(mysql.NewTxManager(db), transaction.Options{Backoff: time.Millisecond}, log)
	cache := apporder.NopCache{}
	events := messaging.NopPublisher{}

	return New(cfg, Handlers{
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
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func seed(t *testing.T, r http.Handler, users []string, books map[string]int) {
	t.Helper()
	for _, u := range users {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users", fmt.Sprintf(`{"user_id":%q,"username":%q}`, u, u))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	for id, stock := range books {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/books", fmt.Sprintf(`{"book_id":%q,"title":%q,"stock":%d}`, id, id, stock))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

func decodeOrders(t *testing.T, env envelope) []orderData {
	t.Helper()
	var orders []orderData
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	return orders
}

func TestPing(t *testing.T) {
	r := setupRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRequestIDPropagated(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.HeaderRequestID))
}

func TestOrderLifecycle(t *testing.T) {
	r := setupRouter(t)
	seed(t, r, []string{"user_1"}, map[string]int{"book_a": 5})

	// 下单:PENDING,不扣库存
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/orders", `{"orders":[{"user_id":"user_1","books":{"book_a":3}}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeOrders(t, env)
	require.Len(t, created, 1)
	assert.Equal(t, "PENDING", created[0].Status)
	assert.Equal(t, map[string]int{"book_a": 3}, created[0].Books)
	orderID := created[0].OrderID

	// 送达:扣库存
	body := fmt.Sprintf(`{"orders":[{"order_id":%q,"status":"DELIVERED"}]}`, orderID)
	w, env = doJSON(t, r, http.MethodPatch, "/api/v1/orders/status", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "DELIVERED", decodeOrders(t, env)[0].Status)

	// 再次送达:冲突
	w, env = doJSON(t, r, http.MethodPatch, "/api/v1/orders/status", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ErrCodeOrderDelivered, env.Code)

	// 库存流水只有一条
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/books/book_a/stock-logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []stockLogData
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, orderID, logs[0].OrderID)
	assert.Equal(t, 5, logs[0].BeforeStock)
	assert.Equal(t, 2, logs[0].AfterStock)

	// 查询
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/orders/"+orderID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got orderData
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "DELIVERED", got.Status)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/users/user_1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeOrders(t, env), 1)
}

func TestCreateOrders_Errors(t *testing.T) {
	r := setupRouter(t)
	seed(t, r, []string{"user_1", "user_2"}, map[string]int{"book_a": 5})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   int
	}{
		{
			name:       "整批库存不足",
			body:       `{"orders":[{"user_id":"user_1","books":{"book_a":3}},{"user_id":"user_2","books":{"book_a":3}}]}`,
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.ErrCodeInsufficientStock,
		},
		{
			name:       "用户不存在",
			body:       `{"orders":[{"user_id":"ghost","books":{"book_a":1}}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.ErrCodeUserNotFound,
		},
		{
			name:       "图书不存在",
			body:       `{"orders":[{"user_id":"user_1","books":{"book_x":1}}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.ErrCodeBookNotFound,
		},
		{
			name:       "数量为0",
			body:       `{"orders":[{"user_id":"user_1","books":{"book_a":0}}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeInvalidQuantity,
		},
		{
			name:       "数量不是整数",
			body:       `{"orders":[{"user_id":"user_1","books":{"book_a":"3"}}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBindError,
		},
		{
			name:       "空批次",
			body:       `{"orders":[]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBindError,
		},
		{
			name:       "非法JSON",
			body:       `{"orders":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBindError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/api/v1/orders", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/users/user_1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeOrders(t, env), "失败的请求没有留下订单")
}

func TestUpdateStatus_Errors(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   int
	}{
		{"非法状态名", `{"orders":[{"order_id":"o1","status":"SHIPPED"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidStatus},
		{"非法状态值", `{"orders":[{"order_id":"o1","status":7}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidStatus},
		{"缺少状态", `{"orders":[{"order_id":"o1"}]}`, http.StatusBadRequest, apperrors.ErrCodeBindError},
		{"订单不存在", `{"orders":[{"order_id":"o1","status":"CONFIRMED"}]}`, http.StatusNotFound, apperrors.ErrCodeOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPatch, "/api/v1/orders/status", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestBookAdmin(t *testing.T) {
	r := setupRouter(t)
	seed(t, r, []string{"user_1"}, map[string]int{"book_a": 5})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/books", `{"book_id":"book_a","stock":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ErrCodeDuplicateEntry, env.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/books/book_a", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/orders", `{"orders":[{"user_id":"user_1","books":{"book_a":1}}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code, "下架的图书视为不存在")
	assert.Equal(t, apperrors.ErrCodeBookNotFound, env.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/books/book_a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	r := setupRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/orders/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeOrderNotFound, env.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t)
	doJSON(t, r, http.MethodGet, "/ping", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
