package app

import (
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the optional backing stores. Nil fields were not configured.
type Infra struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Close releases every open connection.
func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ConnectInfra opens the database and redis when they are configured and
// migrates the schema when asked to.
func ConnectInfra(cfg config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{}

	if cfg.Database.Configured() {
		dsn := connection.PostgresDSN(
			cfg.Database.Host,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.Port,
			cfg.Database.SSLMode,
		)
		db, err := connection.ConnectGORMWithRetry(dsn, cfg.Database.MaxRetries)
		if err != nil {
			return nil, err
		}
		infra.DB = db
		logger.Info("database connection established")

		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(Models...); err != nil {
				infra.Close()
				return nil, err
			}
			logger.Info("database schema migrated")
		}
	} else {
		logger.Warn("DB_HOST not set, storage operations will be unavailable")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Redis.MaxRetries)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
		logger.Info("redis connection established")
	}

	return infra, nil
}
