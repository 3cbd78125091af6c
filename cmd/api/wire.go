//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
// 修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookorder/internal/application/book"
	apporder "github.com/xiebiao/bookorder/internal/application/order"
	appuser "github.com/xiebiao/bookorder/internal/application/user"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookorder/internal/interface/http/handler"
	"github.com/xiebiao/bookorder/internal/interface/http/router"
	"github.com/xiebiao/bookorder/pkg/transaction"
)

// infrastructureSet 数据库、缓存、消息队列
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	provideOrderCache,
	provideEventPublisher,
)

// repositorySet 仓储和事务
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewOrderRepository,
	mysql.NewTxManager,
	wire.Bind(new(transaction.Transactor), new(*mysql.TxManager)),
	provideRunner,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	apporder.NewCreateOrdersUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListUserOrdersUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewDelistBookUseCase,
	appbook.NewListStockLogsUseCase,
	appuser.NewRegisterUseCase,
)

// handlerSet HTTP处理器和路由
var handlerSet = wire.NewSet(
	handler.NewOrderHandler,
	handler.NewBookHandler,
	handler.NewUserHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 初始化整个应用
// cfg和logger由main创建(tracing需要在路由注册之前初始化)
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
		newApp,
	)
	return nil, nil, nil
}
