// Package kafka carries the dispatch engine's stream surface: the checkout
// delivery event consumer and the cluster status producer.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"service-dispatch/internal/logx"
)

// HandleFunc processes a single DeliveryEvent. Returning a PermanentError
// marks the message without retry; any other error re-delivers it.
type HandleFunc func(context.Context, DeliveryEvent) error

// indirection for tests
var newConsumerGroup = sarama.NewConsumerGroup

// Consumer wraps a sarama consumer group and feeds delivery events to a
// handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler HandleFunc
	logger  logx.Logger
}

// NewConsumer creates a Kafka consumer. Returns nil when the broker list,
// group or topic is not configured; a nil Consumer is a no-op.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("kafka consume error", logx.Any("err", err))
			time.Sleep(time.Second)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close shuts the consumer group down.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var dto DeliveryEventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			h.c.logger.Warn("kafka bad json", logx.Any("err", err))
			sess.MarkMessage(msg, "")
			continue
		}

		ev := ToDomain(dto)
		if ev.OrderID == "" {
			h.c.logger.Warn("kafka empty order_id")
			sess.MarkMessage(msg, "")
			continue
		}
		if ev.Event != EventCreated && ev.Event != EventCancelled {
			h.c.logger.Warn("kafka unknown event type",
				logx.String("order_id", ev.OrderID),
				logx.String("type", ev.Event),
			)
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.c.handler(sess.Context(), ev); err != nil {
			var perm PermanentError
			if errors.As(err, &perm) {
				h.c.logger.Warn("kafka handle failed, skipping message",
					logx.String("order_id", ev.OrderID),
					logx.String("type", ev.Event),
					logx.Any("err", err),
				)
				sess.MarkMessage(msg, "")
				continue
			}
			h.c.logger.Error("kafka handle failed, will retry",
				logx.String("order_id", ev.OrderID),
				logx.String("type", ev.Event),
				logx.Any("err", err),
			)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
