package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/domain"
	driversgw "service-dispatch/internal/gateway/drivers"
	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/http/router"
	"service-dispatch/internal/locations"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/repository"
	clustersvc "service-dispatch/internal/service/cluster"
	deliverysvc "service-dispatch/internal/service/delivery"
	dispatchsvc "service-dispatch/internal/service/dispatch"
	driversvc "service-dispatch/internal/service/driver"
	"service-dispatch/internal/service/matching"
	offersvc "service-dispatch/internal/service/offer"
	"service-dispatch/internal/service/sweeper"
	"service-dispatch/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container: services, HTTP surface and sweeper.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerHTTP)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the worker container: services plus the Kafka
// consumer, no HTTP surface.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerWorker)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, extra func(*dig.Container) error) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := extra(container); err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker dig container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func provideCounter(container *dig.Container, ctor func() prometheus.Counter, name string) error {
	provider := func() prometheus.Counter {
		c := ctor()
		registerCollector(c)
		return c
	}
	if err := container.Provide(provider, dig.Name(name)); err != nil {
		return fmt.Errorf("provide counter %s: %w", name, err)
	}
	return nil
}

// registerCollector tolerates re-registration so rebuilding the container in
// one process does not panic.
func registerCollector(c prometheus.Collector) {
	_ = prometheus.Register(c)
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type offerServiceIn struct {
	dig.In
	Repo       *repository.DispatchRepo
	Producer   *kafka.Producer
	Settings   domain.AssignmentSettings
	Dispatched prometheus.Counter `name:"offers_dispatched_total"`
	Logger     logx.Logger
}

type sweeperIn struct {
	dig.In
	Offers   *offersvc.Service
	Repo     *repository.DispatchRepo
	Assigner *dispatchsvc.Service
	Producer *kafka.Producer
	Settings domain.AssignmentSettings
	Cycles   prometheus.Counter `name:"sweep_cycles_total"`
	Expired  prometheus.Counter `name:"offers_expired_total"`
	Retries  prometheus.Counter `name:"cluster_retries_total"`
	Failed   prometheus.Counter `name:"clusters_failed_total"`
	Logger   logx.Logger
}

type gatewayIn struct {
	dig.In
	Cfg     *config.Config
	Retries prometheus.Counter `name:"gateway_retries_total"`
	Logger  logx.Logger
}

func registerService(container *dig.Container) error {
	if err := provideCounter(container, metrics.NewOffersDispatchedTotal, "offers_dispatched_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewOffersExpiredTotal, "offers_expired_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewSweepCyclesTotal, "sweep_cycles_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewClusterRetriesTotal, "cluster_retries_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewClustersFailedTotal, "clusters_failed_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewRateLimitExceededTotal, "rate_limit_exceeded_total"); err != nil {
		return err
	}
	if err := provideCounter(container, metrics.NewGatewayRetriesTotal, "gateway_retries_total"); err != nil {
		return err
	}

	return provideAll(container,
		repository.NewDispatchRepo,
		repository.NewDriverRepo,
		repository.NewSettingsRepo,
		loadSettings,
		func(cfg *config.Config) *locations.Cache {
			return locations.NewCache(locations.NewClient(cfg.Redis.Addr))
		},
		func(in gatewayIn) *driversgw.RetryingGateway {
			gw := driversgw.NewHTTPGateway(in.Cfg.Gateway.BaseURL)
			if gw == nil {
				return nil
			}
			return driversgw.NewRetryingGateway(gw, in.Logger, in.Retries, driversgw.RetryConfig{
				MaxAttempts: in.Cfg.Gateway.MaxAttempts,
				BaseDelay:   in.Cfg.Gateway.BaseDelay,
				MaxDelay:    in.Cfg.Gateway.MaxDelay,
			})
		},
		func(cfg *config.Config, logger logx.Logger) (*kafka.Producer, error) {
			return kafka.NewProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.StatusEventTopic)
		},
		func(drivers *repository.DriverRepo, repo *repository.DispatchRepo, cache *locations.Cache, settings domain.AssignmentSettings, logger logx.Logger) *matching.Service {
			return matching.NewService(drivers, repo, cache, settings, logger)
		},
		func(repo *repository.DispatchRepo, settings domain.AssignmentSettings, logger logx.Logger) *clustersvc.Builder {
			return clustersvc.NewBuilder(repo, settings, logger)
		},
		func(in offerServiceIn) *offersvc.Service {
			return offersvc.NewService(in.Repo, in.Producer, in.Settings, in.Dispatched, in.Logger)
		},
		func(repo *repository.DispatchRepo, matcher *matching.Service, offers *offersvc.Service, drivers *repository.DriverRepo, producer *kafka.Producer, logger logx.Logger) *dispatchsvc.Service {
			return dispatchsvc.NewService(repo, matcher, offers, drivers, producer, logger)
		},
		func(repo *repository.DriverRepo, cache *locations.Cache, offers *offersvc.Service, gw *driversgw.RetryingGateway, logger logx.Logger) *driversvc.Service {
			if gw == nil {
				return driversvc.NewService(repo, cache, offers, nil, logger)
			}
			return driversvc.NewService(repo, cache, offers, gw, logger)
		},
		func(repo *repository.DispatchRepo, builder *clustersvc.Builder, assigner *dispatchsvc.Service, producer *kafka.Producer, logger logx.Logger) *deliverysvc.Service {
			return deliverysvc.NewService(repo, builder, assigner, producer, logger)
		},
		func(in sweeperIn) *sweeper.Sweeper {
			return sweeper.New(in.Offers, in.Repo, in.Assigner, in.Producer, in.Settings, sweeper.Counters{
				Cycles:  in.Cycles,
				Expired: in.Expired,
				Retries: in.Retries,
				Failed:  in.Failed,
			}, in.Logger)
		},
	)
}

var settingsLoader = (*repository.SettingsRepo).Load

// loadSettings resolves the effective assignment settings: config defaults
// overridden by the singleton settings row when one exists.
func loadSettings(ctx context.Context, cfg *config.Config, repo *repository.SettingsRepo, logger logx.Logger) domain.AssignmentSettings {
	s := cfg.Assignment

	loadCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row, err := settingsLoader(repo, loadCtx)
	switch {
	case err != nil:
		logger.Warn("settings row load failed, using config defaults",
			logx.Any("err", err),
		)
	case row != nil:
		s = *row
	}
	return s.Normalize()
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(
		logger logx.Logger,
		base *handlers.Handlers,
		offers *handlers.OfferHandler,
		clusters *handlers.ClusterHandler,
		drivers *handlers.DriverHandler,
		rl *ratelimit.Middleware,
	) http.Handler {
		return router.New(router.Deps{
			Logger:    logger,
			Base:      base,
			Offers:    offers,
			Clusters:  clusters,
			Drivers:   drivers,
			RateLimit: rl,
		})
	}
	return provideAll(container,
		handlers.New,
		handlers.NewOfferUsecase,
		handlers.NewOfferHandler,
		handlers.NewClusterUsecase,
		handlers.NewAssignUsecase,
		handlers.NewClusterQueries,
		handlers.NewClusterHandler,
		handlers.NewDriverUsecase,
		handlers.NewDriverHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		makeDeliveryKafka,
		func(cfg *config.Config, logger logx.Logger, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DeliveryTopic, h)
		},
	)
}
