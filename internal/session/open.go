package session

import (
	"context"
	"fmt"
	"log/slog"

	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/database"
)

// Open builds the driver selected by cfg.SessionDriver.
func Open(ctx context.Context, cfg *config.Config) (Driver, error) {
	switch cfg.SessionDriver {
	case config.SessionDriverMemory:
		return NewMemoryDriver(), nil
	case config.SessionDriverFile:
		return NewFileDriver(cfg.SessionFile)
	case config.SessionDriverBolt:
		return OpenBoltDriver(cfg.SessionBoltFile, cfg.SessionNamespace)
	case config.SessionDriverRedis:
		return OpenRedisDriver(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionNamespace)
	case config.SessionDriverPostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresDriver(db.Pool, cfg.SessionNamespace, db.Close), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.SessionDriver)
	}
}

// LogDriver records which backend holds the session.
func LogDriver(cfg *config.Config) {
	attrs := []any{"driver", cfg.SessionDriver, "namespace", cfg.SessionNamespace}
	switch cfg.SessionDriver {
	case config.SessionDriverFile:
		attrs = append(attrs, "path", cfg.SessionFile)
	case config.SessionDriverBolt:
		attrs = append(attrs, "path", cfg.SessionBoltFile)
	case config.SessionDriverRedis:
		attrs = append(attrs, "addr", cfg.RedisAddr)
	}
	slog.Info("session store ready", attrs...)
}
