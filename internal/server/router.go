package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/daybook/internal/handlers"
)

type RouterConfig struct {
	ServiceName        string
	EntryHandler       *handlers.EntryHandler
	EntityHandler      *handlers.EntityHandler
	MaintenanceHandler *handlers.MaintenanceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Entries
		api.GET("/entries", cfg.EntryHandler.List)
		api.GET("/entries/:date", cfg.EntryHandler.Get)
		api.POST("/entries/reconcile", cfg.EntryHandler.Reconcile)
		api.POST("/entries/reconcile-batch", cfg.EntryHandler.ReconcileBatch)

		// Entities
		api.GET("/entities/:kind", cfg.EntityHandler.List)
		api.GET("/entities/:kind/:id", cfg.EntityHandler.Get)
		api.POST("/entities/:kind/:id/merge", cfg.EntityHandler.Merge)

		// Maintenance
		api.POST("/maintenance/sweep", cfg.MaintenanceHandler.Sweep)
	}

	return router
}
