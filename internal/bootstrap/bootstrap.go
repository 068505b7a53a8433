// Package bootstrap connects the configured infrastructure and publishes it
// through the container. Both the API server and the admin CLI start here.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/go-social-api/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/go-social-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-api/internal/infrastructure/postgres/migrations"
	"github.com/oksasatya/go-social-api/internal/infrastructure/search"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Init loads every component into the container. The store is mandatory;
// Redis, GCS, Elasticsearch and RabbitMQ are optional and only logged when
// they cannot be reached. The returned func releases everything.
func Init(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (func(), error) {
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))

	closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return func() {}, err
	}
	closeOptional := openOptional(ctx, cfg, logger)
	return func() {
		closeOptional()
		closeStore()
	}, nil
}

// OpenStore connects the driver named by cfg.StoreDriver and sets the
// container store.
func OpenStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (func(), error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.MigrateOnStart {
			if err := migrate(cfg.PostgresDSN(), logger); err != nil {
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		container.SetStore(&container.Store{
			Driver: DriverPostgres,
			Users:  pginfra.NewUserRepository(pool),
			Posts:  pginfra.NewPostRepository(pool),
		})
		return pool.Close, nil

	case DriverMongo:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		users := mongoinfra.NewUserRepository(db)
		container.SetStore(&container.Store{
			Driver: DriverMongo,
			Users:  users,
			Posts:  mongoinfra.NewPostRepository(db, users),
		})
		return func() { _ = client.Disconnect(context.Background()) }, nil

	case DriverMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
		s := memory.NewStore()
		container.SetStore(&container.Store{Driver: DriverMemory, Users: s.Users(), Posts: s.Posts()})
		return func() {}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func migrate(dsn string, logger logrus.FieldLogger) error {
	db, err := migrations.Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	logger.Info("running migrations...")
	applied, err := migrations.Up(db)
	if err != nil {
		return err
	}
	if !applied {
		logger.Info("no migrations to run")
	}
	return nil
}

func openOptional(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) func() {
	var closers []func()

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			helpers.LogWarn(logger, "redis unavailable; rate limiting disabled", err, logrus.Fields{"addr": cfg.RedisAddr})
			_ = rdb.Close()
		} else {
			container.SetRedis(rdb)
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogWarn(logger, "GCS unavailable; uploads disabled", err, nil)
		} else {
			container.SetGCS(gcs)
			closers = append(closers, func() { _ = gcs.Close() })
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		helpers.LogWarn(logger, "elasticsearch client failed; searching the store", err, nil)
	case es != nil:
		index := search.NewUserIndex(es, cfg.ESUsersIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			helpers.LogWarn(logger, "elasticsearch unavailable; searching the store", err, logrus.Fields{"index": cfg.ESUsersIndex})
			break
		}
		profiles := application.NewProfileIndex(index, container.GetStore().Users, logger)
		// Profiles written while the index was unreachable are only picked up
		// by a full rebuild.
		if n, err := profiles.Reindex(ctx); err != nil {
			helpers.LogWarn(logger, "user reindex failed; searching the store until it succeeds", err, logrus.Fields{"indexed": n})
		} else {
			logger.WithFields(logrus.Fields{"index": cfg.ESUsersIndex, "indexed": n}).Info("user index ready")
		}
		container.SetProfileIndex(profiles)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; notifications disabled", err, nil)
		} else {
			container.SetRabbitPub(pub)
			closers = append(closers, pub.Close)
		}
	}

	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
