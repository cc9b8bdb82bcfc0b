package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarajb-778/StockPilot/services"
)

type DashboardController struct {
	svc *services.DashboardService
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{svc: svc}
}

// GET /dashboard
func (h *DashboardController) Metrics(c *gin.Context) {
	m, err := h.svc.Metrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GET /dashboard/:series/summary?timeframe=daily|weekly|monthly
func (h *DashboardController) Summary(c *gin.Context) {
	series, err := services.ParseSeries(c.Param("series"))
	if err != nil {
		respondError(c, err)
		return
	}
	tf, err := services.ParseTimeframe(c.DefaultQuery("timeframe", string(services.Daily)))
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), series, tf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /expenses
func (h *DashboardController) ExpensesByCategory(c *gin.Context) {
	rows, err := h.svc.ExpensesByCategory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
