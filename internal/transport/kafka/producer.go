package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// indirection for tests
var newSyncProducer = sarama.NewSyncProducer

// Producer publishes cluster status events for the notification, chat and
// commission collaborators.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
}

// NewProducer creates a Kafka producer. Returns nil when brokers or topic are
// not configured; a nil Producer drops events.
func NewProducer(logger logx.Logger, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Producer{producer: p, topic: topic, logger: logger}, nil
}

// PublishClusterStatus emits one status change event, keyed by delivery so
// per-delivery ordering survives partitioning.
func (p *Producer) PublishClusterStatus(_ context.Context, e domain.ClusterStatusEvent) error {
	if p == nil {
		return nil
	}

	dto := StatusEventDTO{
		EventID:    uuid.NewString(),
		DeliveryID: e.DeliveryID,
		ClusterID:  e.ClusterID,
		Status:     e.Status,
		DriverID:   e.DriverID,
		OccurredAt: e.At,
	}
	value, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(e.DeliveryID, 10)),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send status event: %w", err)
	}

	p.logger.Debug("cluster status event published",
		logx.String("event_id", dto.EventID),
		logx.Int64("delivery_id", e.DeliveryID),
		logx.String("status", e.Status),
	)
	return nil
}

// Close shuts the producer down.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
