package controller

import (
	"context"

	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	router   *gin.RouterGroup
	database Pinger
}

func NewHealthController(router *gin.RouterGroup, database Pinger) *HealthController {
	return &HealthController{
		router:   router,
		database: database,
	}
}

func (controller *HealthController) SetupRoutes() {
	controller.router.GET("/health", controller.healthHandler)
	controller.router.HEAD("/health", controller.healthHandler)
}

func (controller *HealthController) healthHandler(c *gin.Context) {
	if controller.database != nil {
		if err := controller.database.PingContext(c.Request.Context()); err != nil {
			tlog.App.Error().Err(err).Msg("Database ping failed")
			c.JSON(503, gin.H{
				"status":  503,
				"message": "Database Unavailable",
			})
			return
		}
	}

	c.JSON(200, gin.H{
		"status":  "ok",
		"message": "Healthy",
	})
}
