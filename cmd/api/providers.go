package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apporder "github.com/xiebiao/bookorder/internal/application/order"
	"github.com/xiebiao/bookorder/internal/domain/order"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/messaging"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookorder/pkg/circuitbreaker"
	"github.com/xiebiao/bookorder/pkg/mq"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// App 组装好的应用
type App struct {
	Engine *gin.Engine
	Config *config.Config
	Logger *zap.Logger
}

func newApp(engine *gin.Engine, cfg *config.Config, log *zap.Logger) *App {
	return &App{Engine: engine, Config: cfg, Logger: log}
}

// provideRunner 从配置创建事务执行器
// transaction.max_retries默认0:只执行一次,冲突直接返回给调用方
func provideRunner(tx transaction.Transactor, cfg *config.Config, log *zap.Logger) *transaction.Runner {
	return transaction.NewRunner(tx, transaction.Options{
		MaxRetries: cfg.Transaction.MaxRetries,
		Backoff:    cfg.Transaction.RetryBackoff,
	}, log)
}

// provideOrderCache cache.enabled=false时不连接Redis
func provideOrderCache(cfg *config.Config, log *zap.Logger) (apporder.OrderCache, func(), error) {
	if !cfg.Cache.Enabled {
		log.Info("订单缓存未启用")
		return apporder.NopCache{}, func() {}, nil
	}

	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}
	return redis.NewOrderCache(client, cfg), cleanup, nil
}

// provideEventPublisher mq.enabled=false时事件直接丢弃
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (order.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		log.Info("订单事件发布未启用")
		return messaging.NopPublisher{}, func() {}, nil
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭RabbitMQ连接失败", zap.Error(err))
		}
	}

	opts := circuitbreaker.DefaultOptions()
	opts.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	breaker := circuitbreaker.New("rabbitmq", opts)

	return messaging.NewOrderEventPublisher(pub, breaker, pub.Exchange(), log), cleanup, nil
}
