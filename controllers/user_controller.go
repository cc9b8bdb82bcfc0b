package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarajb-778/StockPilot/services"
)

type UserController struct {
	svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{svc: svc}
}

// GET /users
func (h *UserController) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
