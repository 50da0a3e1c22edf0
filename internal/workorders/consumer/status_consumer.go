// Package consumer ingests work order status changes announced by the shop
// floor system and applies them to local work orders.
package consumer

import (
	"context"
	"fmt"

	"workbay/internal/workorders/service"
	"workbay/pkg/config"
	apperrors "workbay/pkg/errors"
	"workbay/pkg/kafka"
	kafka_config "workbay/pkg/kafka/config"
	kafka_middleware "workbay/pkg/kafka/middleware"
	"workbay/pkg/model"
)

// statusEvent is the wire format of a work order status announcement.
type statusEvent struct {
	TenantID    string                `json:"tenant_id"`
	WorkOrderID string                `json:"work_order_id"`
	Status      model.WorkOrderStatus `json:"status"`
}

type StatusConsumer struct {
	consumer *kafka.Consumer
	cfg      *config.Config
}

func NewStatusConsumer(cfg *config.Config, svc service.WorkOrderService) (*StatusConsumer, error) {
	kcfg := kafka_config.Load()

	handler := func(ctx context.Context, msg kafka.Message) error {
		var event statusEvent
		if err := msg.DecodeValue(&event); err != nil {
			return fmt.Errorf("failed to decode status event: %w", err)
		}
		if event.TenantID == "" || event.WorkOrderID == "" {
			return fmt.Errorf("status event missing tenant_id or work_order_id")
		}

		err := svc.UpdateStatus(ctx, event.TenantID, event.WorkOrderID, event.Status)
		if err != nil {
			// Stale or out-of-order announcements are dropped, not retried.
			if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInternal {
				cfg.Log.Warn("Dropping unapplicable status event",
					"work_order_id", event.WorkOrderID,
					"status", event.Status,
					"reason", appErr.Message,
				)
				return nil
			}
			return err
		}
		return nil
	}

	c, err := kafka.NewConsumer(
		kcfg,
		cfg.KafkaWorkOrdersTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaWorkOrdersTopic+".dlq",
		handler,
		cfg.Log,
	)
	if err != nil {
		return nil, err
	}
	c.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	c.Use(kafka_middleware.MetricsConsumerMiddleware())

	return &StatusConsumer{consumer: c, cfg: cfg}, nil
}

// Start blocks until the context is cancelled.
func (sc *StatusConsumer) Start(ctx context.Context) error {
	sc.cfg.Log.Info("Work order status consumer starting", "topic", sc.cfg.KafkaWorkOrdersTopic)
	return sc.consumer.Start(ctx)
}

func (sc *StatusConsumer) Close() error {
	return sc.consumer.Close()
}
