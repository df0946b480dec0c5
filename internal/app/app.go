package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kyc_arena/internal/config"
	"kyc_arena/internal/db"
	"kyc_arena/internal/service"
	"kyc_arena/internal/session"
	"kyc_arena/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds the long-lived dependencies shared by the binaries.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client // nil when REDIS_ADDR is unset
	Sessions session.Store
	Service  *service.Service
}

// SetupLogger configures logrus the same way for every binary.
func SetupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// New connects to the database (migrating the schema) and, when configured,
// to Redis, then builds the session registry and the service.
func New(cfg *config.Config) (*App, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: gdb}
	if cfg.RedisAddr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	switch cfg.SessionStore {
	case "redis":
		if a.Redis == nil {
			a.Close()
			return nil, errors.New("SESSION_STORE=redis requires REDIS_ADDR")
		}
		a.Sessions = session.NewRedisStore(a.Redis, cfg.SessionTTL)
	case "memory", "":
		a.Sessions = session.NewMemoryStore(cfg.SessionTTL)
	default:
		a.Close()
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	a.Service = service.New(gdb, utils.NewCache(a.Redis, cfg.CacheTTL), a.Sessions)
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Warn("Redis close failed")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
