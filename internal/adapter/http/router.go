package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Catalog   interfaces.CatalogService
	FloorPlan interfaces.FloorPlanService
	Ledger    interfaces.LedgerService
	Sales     interfaces.SalesService
	Store     interfaces.Store
}

type RouterConfig struct {
	// CORSOrigins lists allowed origins; empty allows any origin.
	CORSOrigins []string
	Location    *time.Location
}

func NewRouter(svc Services, cfg RouterConfig, logger logger.Logger) *gin.Engine {
	router := gin.New()

	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}

	router.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		cors.New(corsCfg),
	)

	menu := NewMenuHandler(svc.Catalog, logger)
	tables := NewTableHandler(svc.FloorPlan, logger)
	orders := NewOrderHandler(svc.Ledger, logger)
	reports := NewReportHandler(svc.Sales, cfg.Location, logger)

	router.GET("/health", healthHandler(svc.Store))

	router.GET("/menu", menu.List)
	router.POST("/menu", menu.Add)
	router.PATCH("/menu/:id", menu.Reprice)
	router.DELETE("/menu/:id", menu.Delete)

	router.GET("/tables", tables.List)
	router.POST("/tables", tables.Add)
	router.DELETE("/tables/:number", tables.Remove)
	router.PUT("/tables/:number/status", tables.SetStatus)

	router.POST("/orders", orders.Create)
	router.GET("/orders/active", orders.Active)
	router.GET("/orders/:id", orders.Detail)
	router.PATCH("/orders/:id/status", orders.UpdateStatus)
	router.GET("/orders/:id/history", orders.History)

	router.GET("/reports/daily", reports.Daily)

	return router
}

func healthHandler(store interfaces.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
