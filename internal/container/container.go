package container

import (
	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/domain/repository"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router auto-wires modules from these singletons.

// Store is the selected persistence backend.
type Store struct {
	Driver string
	Users  repository.UserRepository
	Posts  repository.PostRepository
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	gcsClient   *storage.Client
	store       *Store
	profiles    *application.ProfileIndex

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetStore(s *Store)            { store = s }
func GetStore() *Store             { return store }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }

// GetJWT falls back to a manager built from the loaded config.
func GetJWT() *helpers.JWTManager {
	if jwtManager == nil && cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}
	return jwtManager
}

// SetProfileIndex is left unset when Elasticsearch is not configured; user
// search then stays on the store.
func SetProfileIndex(p *application.ProfileIndex) { profiles = p }
func GetProfileIndex() *application.ProfileIndex  { return profiles }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

// Reset clears every singleton. Tests use it between router builds.
func Reset() {
	cfg, logger, redisClient, gcsClient = nil, nil, nil, nil
	store, profiles, jwtManager = nil, nil, nil
	rabbitPub = nil
}
