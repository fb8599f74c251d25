package app

import (
	"context"
	"errors"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/service/delivery"
	"service-dispatch/internal/transport/kafka"
)

// makeDeliveryKafka routes delivery lifecycle events into the delivery
// service. Validation failures and terminal-state rejections are permanent;
// redelivering those messages can never succeed.
func makeDeliveryKafka(svc *delivery.Service) kafka.HandleFunc {
	return func(ctx context.Context, event kafka.DeliveryEvent) error {
		switch event.Event {
		case kafka.EventCreated:
			_, err := svc.Create(ctx, event.Delivery)
			if errors.Is(err, apperr.ErrInvalid) {
				return kafka.Permanent(err)
			}
			return err
		case kafka.EventCancelled:
			err := svc.Cancel(ctx, event.OrderID)
			if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
				return kafka.Permanent(err)
			}
			return err
		default:
			return nil
		}
	}
}
