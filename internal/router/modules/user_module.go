package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
)

// UserModule serves /api/user/*. Profile reads and search are public; the
// /me routes require a bearer token.
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, guard gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	user := rg.Group("/user")

	// Public with a per-IP limit
	public := user.Group("", perMinute(300, middleware.KeyByIPAndPath()))
	{
		public.GET("/search/:query", m.Handler.Search)
		public.GET("/:id", m.Handler.GetByID)
	}

	// Protected
	me := user.Group("/me", m.Guard, perMinute(120, middleware.KeyByUserID()))
	{
		me.GET("", m.Handler.Me)
		me.PUT("", m.Handler.UpdateMe)
		me.POST("/avatar", perMinute(5, middleware.KeyByUserID()), m.Handler.UploadAvatar)
	}
}
