package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swarajb-778/StockPilot/models"
	"github.com/swarajb-778/StockPilot/services"
)

type NotificationController struct {
	svc       *services.NotificationService
	threshold int
}

// NewNotificationController takes the low-stock threshold used when a scan
// request does not name one.
func NewNotificationController(svc *services.NotificationService, threshold int) *NotificationController {
	return &NotificationController{svc: svc, threshold: threshold}
}

type createNotificationRequest struct {
	Type    string  `json:"type" binding:"required,notificationtype"`
	Title   string  `json:"title" binding:"required"`
	Message string  `json:"message" binding:"required"`
	UserID  *string `json:"userId"`
}

// GET /notifications?type=&isRead=&limit=
func (h *NotificationController) List(c *gin.Context) {
	var f services.NotificationFilter
	f.Type = models.NotificationType(c.Query("type"))

	if v := c.Query("isRead"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "isRead must be true or false"})
			return
		}
		f.IsRead = &b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return
		}
		f.Limit = n
	}

	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /notifications/unread-count
func (h *NotificationController) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// POST /notifications
func (h *NotificationController) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	n, err := h.svc.Create(c.Request.Context(), services.CreateNotificationInput{
		Type:    models.NotificationType(req.Type),
		Title:   req.Title,
		Message: req.Message,
		UserID:  req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// PATCH /notifications/:id/read
func (h *NotificationController) MarkRead(c *gin.Context) {
	n, err := h.svc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// POST /notifications/mark-all-read
func (h *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Marked %d notifications as read", n)})
}

// DELETE /notifications/:id
func (h *NotificationController) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

// DELETE /notifications/read
func (h *NotificationController) DeleteAllRead(c *gin.Context) {
	n, err := h.svc.DeleteAllRead(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted %d read notifications", n)})
}

// GET|POST /notifications/check-low-stock?threshold=
func (h *NotificationController) CheckLowStock(c *gin.Context) {
	threshold := h.threshold
	if v := c.Query("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "threshold must be an integer"})
			return
		}
		threshold = n
	}

	res, err := h.svc.CheckLowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Created %d new stock alerts", res.Created),
		"alerts":  res.Alerts,
		"failed":  res.Failed,
	})
}
