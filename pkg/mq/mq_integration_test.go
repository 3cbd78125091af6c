//go:build integration

package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupRabbitMQ(t *testing.T) string {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor: wait.ForLog("Server startup complete").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestPublisher_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	url := setupRabbitMQ(t)
	publisher, err := NewPublisher(url, "bookorder.test.events", "topic", zap.NewNop())
	require.NoError(t, err)
	defer publisher.Close()

	// 测试侧声明队列并绑定 order.*
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "order.*", publisher.Exchange(), false, nil))
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := map[string]interface{}{"order_id": "o-1", "status": "PENDING"}
	require.NoError(t, publisher.Publish(ctx, "order.created", event))

	select {
	case msg := <-msgs:
		assert.Equal(t, "order.created", msg.RoutingKey)
		assert.Equal(t, "application/json", msg.ContentType)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		assert.Equal(t, "o-1", got["order_id"])
	case <-ctx.Done():
		t.Fatal("没有收到消息")
	}
}
