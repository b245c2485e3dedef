package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	started time.Time
	log     logr.Logger
}

func NewHealthHandler(store Pinger, log logr.Logger) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now(), log: log.WithName("health")}
}

// GET /api/v1/healthcheck
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error(err, "store ping failed")
		response.Fail(c, response.KindUnavailable, "")
		return
	}
	response.Data(c, http.StatusOK, gin.H{
		"message": "Server is healthy",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// GET /
func Root(c *gin.Context) {
	c.String(http.StatusOK, "server is running")
}

// GET /api/v1/
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": "Server is running"})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	response.Fail(c, response.KindNotFound, "Route not found.")
}
