// Package metrics 订单引擎的Prometheus指标
//
// 指标分四组:
//   - HTTP:请求数、耗时、处理中的请求数
//   - 事务:每次尝试的结果(success/retry/failure)和耗时
//   - 订单业务:创建数、状态变更数、库存扣减量、缓存命中
//   - 外部依赖:熔断器状态、消息发布结果
//
// 命名规范:
//  1. Counter以_total结尾
//  2. Histogram以单位结尾(_seconds)
//  3. 标签只用有限取值的维度(status、result),不要用order_id、user_id
//
// 使用示例:
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordTxAttempt(metrics.ResultRetry, elapsed)
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 事务/发布结果标签值
const (
	ResultSuccess  = "success"
	ResultRetry    = "retry"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// 缓存结果标签值
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// once 保证只注册一次(重复注册会panic)
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 事务指标

	// TxAttemptsTotal 事务尝试次数
	// 标签:result(success=提交成功,retry=冲突后重试,failure=最终失败)
	TxAttemptsTotal *prometheus.CounterVec

	// TxDuration 单次事务尝试耗时
	TxDuration prometheus.Histogram

	// 订单业务指标

	// OrdersCreatedTotal 创建成功的订单数
	OrdersCreatedTotal prometheus.Counter

	// OrderStatusUpdatesTotal 状态变更成功的订单数
	// 标签:status(目标状态)
	OrderStatusUpdatesTotal *prometheus.CounterVec

	// OrderOperationDuration 用例耗时
	// 标签:operation(create/update_status)、result
	OrderOperationDuration *prometheus.HistogramVec

	// StockDecrementedTotal 因送达扣减的库存总量
	StockDecrementedTotal prometheus.Counter

	// OrderCacheRequests 订单缓存读取
	// 标签:result(hit/miss/error)
	OrderCacheRequests *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签:name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签:exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry
// 可以重复调用,只有第一次生效
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	TxAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tx_attempts_total",
			Help: "事务尝试次数",
		},
		[]string{"result"},
	)

	// 事务内只有几条SQL,重试等待不计入
	TxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tx_duration_seconds",
			Help:    "单次事务尝试耗时(秒)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "订单创建总数",
		},
	)

	OrderStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "订单状态变更总数",
		},
		[]string{"status"},
	)

	// 包含重试等待时间
	OrderOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_operation_duration_seconds",
			Help:    "订单用例耗时(秒)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"operation", "result"},
	)

	StockDecrementedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_decremented_total",
			Help: "送达扣减的库存总量",
		},
	)

	OrderCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_cache_requests_total",
			Help: "订单缓存读取次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// RecordTxAttempt 记录一次事务尝试
func RecordTxAttempt(result string, elapsed time.Duration) {
	InitMetrics()
	TxAttemptsTotal.WithLabelValues(result).Inc()
	TxDuration.Observe(elapsed.Seconds())
}

// RecordOrderOperation 记录一次用例调用
func RecordOrderOperation(operation string, err error, elapsed time.Duration) {
	InitMetrics()
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	OrderOperationDuration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}

// AddOrdersCreated 累加创建成功的订单数
func AddOrdersCreated(n int) {
	InitMetrics()
	OrdersCreatedTotal.Add(float64(n))
}

// IncOrderStatusUpdate 累加某个目标状态的变更数
func IncOrderStatusUpdate(status string) {
	InitMetrics()
	OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
}

// AddStockDecremented 累加扣减的库存量
func AddStockDecremented(quantity int) {
	InitMetrics()
	StockDecrementedTotal.Add(float64(quantity))
}

// IncOrderCache 记录一次缓存读取结果
func IncOrderCache(result string) {
	InitMetrics()
	OrderCacheRequests.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState 设置熔断器状态
func SetCircuitBreakerState(name string, state float64) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// IncCircuitBreakerRequest 记录一次经过熔断器的请求
func IncCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// IncMessagePublished 记录一次消息发布
func IncMessagePublished(exchange, routingKey, result string) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, result).Inc()
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
