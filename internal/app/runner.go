package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/http/pprofserver"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/sweeper"
)

// MustRun starts the HTTP server, the reassignment sweeper and the pprof
// server using the provided DI container.
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(func(
		server *http.Server,
		ctx context.Context,
		pool *pgxpool.Pool,
		cfg *config.Config,
		sw *sweeper.Sweeper,
		logger logx.Logger,
	) error {
		pprofSrv := startPprof(cfg, logger)
		go func() {
			_ = sw.Run(ctx)
		}()
		startServer(server, logger)
		waitForShutdown(ctx, logger)
		gracefulShutdown(server, logger, 15*time.Second)
		closeResources(pool, server, pprofSrv, logger)
		return nil
	})
}

func startServer(server *http.Server, logger logx.Logger) {
	go func() {
		logger.Info("service-dispatch listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()
}

func startPprof(cfg *config.Config, logger logx.Logger) *http.Server {
	if cfg.Pprof.Port <= 0 {
		return nil
	}
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Pprof.Port),
		Handler: pprofserver.Handler(pprofserver.Config{
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("pprof listening", logx.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("pprof listen error", logx.Any("err", err))
		}
	}()
	return srv
}

func waitForShutdown(ctx context.Context, logger logx.Logger) {
	<-ctx.Done()
	logger.Info("shutting down service-dispatch")
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Any("err", err))
	}
}

func closeResources(pool *pgxpool.Pool, server, pprofSrv *http.Server, logger logx.Logger) {
	if err := server.Close(); err != nil {
		logger.Error("server close error", logx.Any("err", err))
	}
	if pprofSrv != nil {
		if err := pprofSrv.Close(); err != nil {
			logger.Error("pprof close error", logx.Any("err", err))
		}
	}
	pool.Close()
}
