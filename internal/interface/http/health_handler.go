package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store  Pinger
	Driver string
	Logger logrus.FieldLogger
}

func NewHealthHandler(store Pinger, driver string, logger logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{Store: store, Driver: driver, Logger: logger}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		helpers.LogWarn(h.Logger, "health check failed", err, logrus.Fields{"store": h.Driver})
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": h.Driver})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.Driver})
}
