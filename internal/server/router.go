package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/calyptra/units-backend/internal/handlers"
	"github.com/calyptra/units-backend/internal/middleware"
)

type RouterConfig struct {
	UserHandler     *handlers.UserHandler
	AppHandler      *handlers.AppHandler
	LeaseHandler    *handlers.LeaseHandler
	TransferHandler *handlers.TransferHandler

	TenantMiddleware  *middleware.TenantMiddleware
	CATokenMiddleware *middleware.CATokenMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:80", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Tenant"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("units-backend"))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.TenantMiddleware.Resolve())
	{
		// Users and the ledger
		api.POST("/users", cfg.UserHandler.Register)
		api.GET("/users", cfg.UserHandler.List)
		api.GET("/users/:name", cfg.UserHandler.Get)
		api.POST("/users/:name/add", cfg.UserHandler.AddUnits)
		api.POST("/users/:name/remove", cfg.UserHandler.RemoveUnits)
		api.POST("/users/:name/change", cfg.UserHandler.ChangeUnits)
		api.GET("/users/:name/reputation", cfg.UserHandler.Reputation)
		api.GET("/users/:name/audit", cfg.UserHandler.Audit)
		api.GET("/users/:name/info", cfg.UserHandler.Info)
		api.GET("/stats/allocated", cfg.UserHandler.Allocated)
		api.GET("/stats/usage", cfg.AppHandler.AllUsage)

		// App registry
		api.POST("/apps", cfg.AppHandler.Register)
		api.GET("/apps", cfg.AppHandler.List)
		api.GET("/apps/:name", cfg.AppHandler.Get)
		api.PUT("/apps/:name", cfg.AppHandler.Update)
		api.DELETE("/apps/:name", cfg.AppHandler.Unregister)
		api.GET("/apps/:name/usage", cfg.AppHandler.Usage)

		// Leases
		api.POST("/cas", cfg.LeaseHandler.Register)
		api.GET("/cas", cfg.LeaseHandler.List)
		api.GET("/cas/check", cfg.LeaseHandler.Check)
		api.GET("/cas/describe", cfg.LeaseHandler.Get)
		api.DELETE("/cas", cfg.LeaseHandler.Unregister)

		// Transfers
		api.POST("/transfers", cfg.TransferHandler.Create)
		api.GET("/transfers/:id", cfg.TransferHandler.Get)
		api.POST("/transfers/:id/release", cfg.TransferHandler.Release)
		api.POST("/transfers/:id/accept", cfg.TransferHandler.Accept)
		api.POST("/transfers/:id/dispute", cfg.TransferHandler.Dispute)
		api.POST("/transfers/:id/expire", cfg.TransferHandler.Expire)
		api.GET("/transfers/offers/:user", cfg.TransferHandler.Offers)
		api.GET("/transfers/accepts/:user", cfg.TransferHandler.Accepts)
	}

	// Instances renew their own lease with their capability token.
	ca := router.Group("/ca")
	ca.Use(cfg.TenantMiddleware.Resolve(), cfg.CATokenMiddleware.RequireCAToken())
	{
		ca.POST("/renew", cfg.LeaseHandler.Renew)
	}

	return router
}
