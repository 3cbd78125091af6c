package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupRecorder 用内存Recorder替换全局Provider
func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

// TestInitTracer gRPC exporter是懒连接的,没有Collector也能初始化
func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := InitTracer("test-service", "http://localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_ = shutdown(context.Background())
}

func TestStartSpan(t *testing.T) {
	recorder := setupRecorder(t)

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, root := StartSpan(context.Background(), "test", "Root")
		_, child := StartSpan(ctx, "test", "Child")

		assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.NotEqual(t, root.SpanContext().SpanID(), child.SpanContext().SpanID())

		child.End()
		root.End()
	})

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "Child", ended[0].Name())
	assert.Equal(t, "Root", ended[1].Name())
}

func TestEndSpan(t *testing.T) {
	recorder := setupRecorder(t)

	_, okSpan := StartSpan(context.Background(), "test", "Ok")
	EndSpan(okSpan, nil)

	_, failSpan := StartSpan(context.Background(), "test", "Fail")
	EndSpan(failSpan, errors.New("库存不足"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "库存不足", ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1, "错误记录为exception事件")
}

func TestExtractIDs(t *testing.T) {
	setupRecorder(t)

	t.Run("有Span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test", "Extract")
		defer span.End()

		assert.Len(t, ExtractTraceID(ctx), 32)
		assert.Len(t, ExtractSpanID(ctx), 16)
	})

	t.Run("没有Span", func(t *testing.T) {
		assert.Empty(t, ExtractTraceID(context.Background()))
		assert.Empty(t, ExtractSpanID(context.Background()))
	})
}
