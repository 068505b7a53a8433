package router

import (
	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/internal/router/modules"
)

// Services groups the application services built from the container.
type Services struct {
	Auth       *application.AuthService
	Users      *application.UserService
	Posts      *application.PostService
	Engagement *application.EngagementService
	// Profiles is nil unless Elasticsearch is configured.
	Profiles *application.ProfileIndex
}

// BuildServices wires the application layer from the container singletons.
// The store, config and logger must be set.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetStore()
	profiles := container.GetProfileIndex()
	var index repository.UserIndex
	if profiles != nil {
		index = profiles
	}

	var pub application.JobPublisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}
	notifier := application.NewNotifier(pub, logger, cfg.AppName, cfg.AppURL)

	return Services{
		Auth:       application.NewAuthService(store.Users, index, container.GetJWT(), notifier, logger),
		Users:      application.NewUserService(store.Users, index, container.GetGCS(), cfg.GCSBucket, logger),
		Posts:      application.NewPostService(store.Posts, store.Users, logger, cfg.FeedDefaultLimit, cfg.FeedMaxLimit),
		Engagement: application.NewEngagementService(store.Posts, store.Users, notifier, logger),
		Profiles:   profiles,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()
	guard := middleware.Auth(svc.Auth, logger)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(container.GetStore().Posts, container.GetStore().Driver, logger)))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger), guard))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, logger), guard))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(svc.Posts, svc.Engagement, logger), guard))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return svc
}
