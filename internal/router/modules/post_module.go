package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
)

// PostModule serves /api/post/*. Reads are public; mutations require a
// bearer token.
type PostModule struct {
	Handler *handlers.PostHandler
	Guard   gin.HandlerFunc
}

func NewPostModule(h *handlers.PostHandler, guard gin.HandlerFunc) *PostModule {
	return &PostModule{Handler: h, Guard: guard}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	post := rg.Group("/post")

	// Public with a per-IP limit
	public := post.Group("", perMinute(300, middleware.KeyByIPAndPath()))
	{
		public.GET("/feed", m.Handler.Feed)
		public.GET("/user-posts/:userId", m.Handler.UserPosts)
		public.GET("/:id", m.Handler.Get)
	}

	// Protected
	auth := post.Group("", m.Guard, perMinute(300, middleware.KeyByUserID()))
	{
		auth.POST("/create", perMinute(30, middleware.KeyByUserID()), m.Handler.Create)
		auth.POST("/:id/like", m.Handler.Like)
		auth.POST("/:id/comment", m.Handler.Comment)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
