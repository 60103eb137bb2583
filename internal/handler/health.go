package handler

import (
	"context"
	"net/http"

	"bloodlink-api/internal/models"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness and the size of the donor pool.
type HealthHandler struct {
	users UserCounter
}

// UserCounter interface for dependency injection
type UserCounter interface {
	All(ctx context.Context) ([]models.User, error)
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(users UserCounter) *HealthHandler {
	return &HealthHandler{users: users}
}

// Health handles GET /health requests
//
//	@Summary	Liveness check with the current donor count.
//	@Produce	json
//	@Success	200
//	@Router		/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	all, err := h.users.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": len(all)})
}
