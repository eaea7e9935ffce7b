package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger проверяет доступность хранилища для healthcheck
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter собирает HTTP маршруты сервиса
func NewRouter(handler *SlotHandler, db Pinger, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	slots := router.Group("/api/slots")
	{
		slots.POST("", handler.CreateSlot)
		slots.GET("/week", handler.GetWeek)
		slots.GET("/date/:date", handler.GetDate)
		slots.PUT("/:id", handler.UpdateSlot)
		slots.DELETE("/:id", handler.DeleteSlot)
		slots.PUT("/:id/date", handler.UpdateSlotForDate)
		slots.DELETE("/:id/date", handler.DeleteSlotForDate)
	}

	return router
}
