package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbasket/internal/connectivity"
	"smallbasket/internal/services"
)

type StatusHandler struct {
	manager *connectivity.Manager
}

func NewStatusHandler(manager *connectivity.Manager) *StatusHandler {
	return &StatusHandler{manager: manager}
}

// Status handles GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Status())
}

// Refresh handles POST /status/refresh
func (h *StatusHandler) Refresh(c *gin.Context) {
	if err := h.manager.ForceUpdate(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   err.Error(),
			"message": services.UserMessage(err),
		})
		return
	}
	c.JSON(http.StatusOK, h.manager.Status())
}
