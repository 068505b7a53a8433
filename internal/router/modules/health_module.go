package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
)

// HealthModule exposes GET /health outside the API group so probes skip the
// API middlewares.
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule {
	return &HealthModule{Handler: h}
}

func (m *HealthModule) RegisterRoot(engine *gin.Engine) {
	engine.GET("/health", m.Handler.Health)
}

func (m *HealthModule) Register(*gin.RouterGroup) {}
