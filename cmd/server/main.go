// Command server runs the matchboard HTTP API.
//
// STARTUP:
//  1. load config (.env + environment) and validate it
//  2. build the logger
//  3. open the database pool, ping it, create missing tables
//  4. pick the image store (local directory or S3)
//  5. connect the optional Redis like-count cache
//  6. serve until SIGINT/SIGTERM
//
// Ping and schema failures are logged and the server still starts, unless
// SCHEMA_STRICT is set, in which case they are fatal.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/matchboard/internal/cache"
	"github.com/sakif/matchboard/internal/config"
	"github.com/sakif/matchboard/internal/imagestore"
	"github.com/sakif/matchboard/internal/logger"
	"github.com/sakif/matchboard/internal/repository/sqlstore"
	"github.com/sakif/matchboard/internal/server"
)

const startupTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(logger.FromConfig(cfg))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("database unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	images, err := openImageStore(ctx, cfg, log)
	if err != nil {
		store.Close()
		log.Error("image store unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(cfg, server.Deps{
		DB:     store,
		Images: images,
		Cache:  openCache(ctx, cfg, log),
	}, log)

	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore opens the pool and prepares the schema. Only an unusable driver
// or DSN is always fatal; connectivity and schema errors are fatal in strict mode.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sqlstore.Store, error) {
	if cfg.DB.Driver == config.DriverSQLite {
		if err := sqlstore.EnsureDir(cfg.DataSourceName()); err != nil {
			return nil, err
		}
	}

	store, err := sqlstore.Open(cfg.DB.Driver, cfg.DataSourceName(), cfg.DB.PoolSize)
	if err != nil {
		return nil, err
	}

	if err := store.Ping(ctx); err != nil {
		if cfg.DB.Strict {
			store.Close()
			return nil, err
		}
		log.Error("database ping failed, continuing", slog.String("error", err.Error()))
		return store, nil
	}
	log.Info("connected to database", slog.String("driver", store.Driver()))

	if err := store.Migrate(ctx); err != nil {
		if cfg.DB.Strict {
			store.Close()
			return nil, err
		}
		log.Error("schema setup failed, continuing", slog.String("error", err.Error()))
		return store, nil
	}
	log.Info("schema ready")
	return store, nil
}

func openImageStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (imagestore.Store, error) {
	if cfg.Images.Store == config.ImageStoreS3 {
		log.Info("storing images in S3",
			slog.String("bucket", cfg.Images.S3Bucket),
			slog.String("prefix", cfg.Images.S3Prefix),
		)
		return imagestore.NewS3(ctx, cfg.Images.S3Bucket, cfg.Images.S3Prefix, cfg.Images.AWSRegion, log)
	}

	log.Info("storing images on disk", slog.String("dir", cfg.Images.UploadDir))
	return imagestore.NewLocal(cfg.Images.UploadDir)
}

// openCache returns nil when REDIS_ADDR is unset. An unreachable Redis is
// still returned; the like counter falls back to the database per request.
func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) *cache.RedisCache {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set, like counts are not cached")
		return nil
	}

	c := cache.NewRedisCache(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Ping(ctx); err != nil {
		log.Warn("redis unreachable, like counts fall back to the database",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()),
		)
	} else {
		log.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))
	}
	return c
}
