package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/swarajb-778/StockPilot/services"
)

// respondError maps service errors onto the {message} error body.
// Unexpected errors are logged and reported with a generic message.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage(err)})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
	default:
		_ = c.Error(err)
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// bindError turns a JSON binding failure into a 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": strings.Join(msgs, "; ")})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "notificationtype":
		return name + " must be one of: stock_alert, user_activity, system"
	}
	return fmt.Sprintf("%s is invalid", name)
}

// notFoundMessage turns `product "abc": not found` into "Product not found".
func notFoundMessage(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, ' '); i > 0 {
		resource := msg[:i]
		return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
	}
	return "Not found"
}
