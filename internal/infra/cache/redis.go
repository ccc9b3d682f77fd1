package cache

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// New connects to the Redis instance backing shared sessions and pings it once.
func New(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}

	if cfg.Redis.EnableTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		// uses the global tracer provider, so call after telemetry.SetupTracing
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("instrument redis: %w", err)
		}
	}

	return rdb, nil
}

func Close(rdb *redis.Client) error {
	return rdb.Close()
}
