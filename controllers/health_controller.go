package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClientCounter reports connected realtime clients.
type ClientCounter interface {
	ClientCount() int
}

type HealthController struct {
	db  *gorm.DB
	hub ClientCounter
}

func NewHealthController(db *gorm.DB, hub ClientCounter) *HealthController {
	return &HealthController{db: db, hub: hub}
}

// GET /health
func (h *HealthController) Check(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
	}
	if h.hub != nil {
		response["websocketClients"] = h.hub.ClientCount()
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
