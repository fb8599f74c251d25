package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"service-dispatch/internal/logx"
	"service-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the Kafka delivery-event worker.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes delivery events until the context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	producer *kafka.Producer,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer, producer)

	logger.Info("dispatch-worker started")
	return consumer.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, producer *kafka.Producer) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", logx.Any("err", err))
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close error", logx.Any("err", err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
