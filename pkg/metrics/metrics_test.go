package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 重复初始化不会panic
func TestInitMetrics(t *testing.T) {
	require.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, TxAttemptsTotal)
	assert.NotNil(t, OrderCacheRequests)
	assert.NotNil(t, MessagesPublishedTotal)
}

func TestRecordTxAttempt(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(TxAttemptsTotal.WithLabelValues(ResultRetry))

	RecordTxAttempt(ResultRetry, 5*time.Millisecond)
	RecordTxAttempt(ResultRetry, 7*time.Millisecond)

	after := testutil.ToFloat64(TxAttemptsTotal.WithLabelValues(ResultRetry))
	assert.Equal(t, before+2, after)
}

func TestOrderCounters(t *testing.T) {
	InitMetrics()

	created := testutil.ToFloat64(OrdersCreatedTotal)
	AddOrdersCreated(3)
	assert.Equal(t, created+3, testutil.ToFloat64(OrdersCreatedTotal))

	stock := testutil.ToFloat64(StockDecrementedTotal)
	AddStockDecremented(7)
	assert.Equal(t, stock+7, testutil.ToFloat64(StockDecrementedTotal))

	delivered := testutil.ToFloat64(OrderStatusUpdatesTotal.WithLabelValues("DELIVERED"))
	IncOrderStatusUpdate("DELIVERED")
	assert.Equal(t, delivered+1, testutil.ToFloat64(OrderStatusUpdatesTotal.WithLabelValues("DELIVERED")))
}

func TestLabeledCounters(t *testing.T) {
	InitMetrics()

	hits := testutil.ToFloat64(OrderCacheRequests.WithLabelValues(CacheHit))
	IncOrderCache(CacheHit)
	IncOrderCache(CacheMiss)
	assert.Equal(t, hits+1, testutil.ToFloat64(OrderCacheRequests.WithLabelValues(CacheHit)))

	SetCircuitBreakerState("order-events", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("order-events")))

	rejected := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("order-events", ResultRejected))
	IncCircuitBreakerRequest("order-events", ResultRejected)
	assert.Equal(t, rejected+1, testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("order-events", ResultRejected)))

	IncMessagePublished("orders", "order.created", ResultSuccess)
	assert.GreaterOrEqual(t, testutil.ToFloat64(MessagesPublishedTotal.WithLabelValues("orders", "order.created", ResultSuccess)), float64(1))
}

func TestRecordOrderOperation(t *testing.T) {
	InitMetrics()

	RecordOrderOperation("create", nil, 10*time.Millisecond)
	RecordOrderOperation("create", errors.New("boom"), 10*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(OrderOperationDuration))
}

func TestObserveHTTPRequest(t *testing.T) {
	InitMetrics()
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "201"))

	ObserveHTTPRequest("POST", "/api/v1/orders", "201", 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/orders", "201")))
}
