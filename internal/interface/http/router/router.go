package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/interface/http/handler"
	"github.com/xiebiao/bookorder/internal/interface/http/middleware"
	"github.com/xiebiao/bookorder/pkg/response"
)

// Handlers 路由用到的所有处理器
type Handlers struct {
	Order *handler.OrderHandler
	Book  *handler.BookHandler
	User  *handler.UserHandler
}

// New 创建Gin引擎并注册路由
//
// 中间件顺序: Recovery → otelgin(生成trace) → Logger(带上trace_id) → Metrics
func New(cfg *config.Config, h Handlers, log *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger(log))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Swagger文档: http://localhost:8080/swagger/index.html
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.CreateOrders)
			orders.PATCH("/status", h.Order.UpdateOrderStatus)
			orders.GET("/:order_id", h.Order.GetOrder)
		}

		users := v1.Group("/users")
		{
			users.POST("", h.User.Register)
			users.GET("/:user_id/orders", h.Order.ListUserOrders)
		}

		books := v1.Group("/books")
		{
			books.POST("", h.Book.PublishBook)
			books.DELETE("/:book_id", h.Book.DelistBook)
			books.GET("/:book_id/stock-logs", h.Book.ListStockLogs)
		}
	}

	return r
}
