package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/DataRockMyWorld/workshopctl/internal/apiclient"
	"github.com/DataRockMyWorld/workshopctl/internal/config"
	"github.com/DataRockMyWorld/workshopctl/internal/infra/cache"
	"github.com/DataRockMyWorld/workshopctl/internal/infra/logger"
	"github.com/DataRockMyWorld/workshopctl/internal/mockapi"
	"github.com/DataRockMyWorld/workshopctl/internal/modules/service"
	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/DataRockMyWorld/workshopctl/internal/smoke"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const redisDialTimeout = 5 * time.Second

// BuildContainer wires every component lazily. Nothing connects until first invoked.
func BuildContainer(cfgPath string) *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load(cfgPath)
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// Redis, only reached when a redis store or blacklist is configured
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		return cache.New(ctx, cfg)
	})

	// session store
	do.Provide(inj, func(i *do.Injector) (session.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.Session.Store {
		case "file":
			return session.NewFileStore(cfg.Session.Path), nil
		case "memory":
			return session.NewMemoryStore(), nil
		case "redis":
			rdb, err := do.Invoke[*redis.Client](i)
			if err != nil {
				return nil, err
			}
			return session.NewRedisStore(rdb, cfg.Redis.KeyPrefix, cfg.Session.Profile), nil
		}
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	})

	do.Provide(inj, func(i *do.Injector) (*session.Session, error) {
		return session.New(do.MustInvoke[session.Store](i)), nil
	})

	// API client
	do.Provide(inj, func(i *do.Injector) (*apiclient.Client, error) {
		return apiclient.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*session.Session](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[*apiclient.Client](i),
			do.MustInvoke[*session.Session](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ServiceRequestService, error) {
		return service.NewServiceRequestService(do.MustInvoke[*apiclient.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.CustomerService, error) {
		return service.NewCustomerService(do.MustInvoke[*apiclient.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.InvoiceService, error) {
		return service.NewInvoiceService(do.MustInvoke[*apiclient.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReportService, error) {
		return service.NewReportService(do.MustInvoke[*apiclient.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DashboardService, error) {
		return service.NewDashboardService(do.MustInvoke[*apiclient.Client](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DirectoryService, error) {
		return service.NewDirectoryService(do.MustInvoke[*apiclient.Client](i)), nil
	})

	// smoke suite
	do.Provide(inj, func(i *do.Injector) (*smoke.Runner, error) {
		return smoke.NewRunner(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// mock backend
	do.Provide(inj, func(i *do.Injector) (mockapi.Blacklist, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Mock.Blacklist != "redis" {
			return mockapi.NewMemoryBlacklist(), nil
		}
		rdb, err := do.Invoke[*redis.Client](i)
		if err != nil {
			return nil, err
		}
		return mockapi.NewRedisBlacklist(rdb, cfg.Redis.KeyPrefix), nil
	})
	do.Provide(inj, func(i *do.Injector) (*mockapi.Server, error) {
		return mockapi.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
			mockapi.WithBlacklist(do.MustInvoke[mockapi.Blacklist](i)),
		)
	})

	return inj
}
