package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public with IP-based rate limits
	rg.POST("/auth/register", perMinute(10, middleware.KeyByIPAndPath()), m.Handler.Register)
	rg.POST("/auth/login", perMinute(10, middleware.KeyByIPAndPath()), m.Handler.Login)

	rg.GET("/auth/verify", m.Guard, m.Handler.Verify)
}
