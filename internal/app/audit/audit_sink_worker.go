package audit

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"learnsol-identity/internal/app/binding"
	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/rabbitmq"
)

const BindingEventConsumerAlias rabbitmq.ConsumerAlias = "BindingEventConsumer"

// AuditSinkWorker drains the binding event queue into the audit table.
type AuditSinkWorker struct {
	service  Service
	consumer rabbitmq.IRabbitmqConsumer
	logger   *logger.Logger
}

func NewAuditSinkWorker(service Service, consumer rabbitmq.IRabbitmqConsumer, l *logger.Logger) *AuditSinkWorker {
	return &AuditSinkWorker{
		service:  service,
		consumer: consumer,
		logger:   l,
	}
}

func (w *AuditSinkWorker) GetServiceName() string {
	return string(BindingEventConsumerAlias)
}

func (w *AuditSinkWorker) StartService(ctx context.Context) error {
	w.logger.Info("Starting Audit Sink Worker")

	return w.consumer.StartConsuming(func(d amqp.Delivery) {
		w.handle(ctx, d)
	})
}

func (w *AuditSinkWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event binding.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.logger.Errorf(err, "Failed to unmarshal binding event")
		return
	}
	if event.EventID == "" || event.Kind == "" {
		w.logger.Warnf("Dropping binding event without id or kind")
		return
	}

	w.logger.Debugf("Processing binding event: Kind=%s, Wallet=%s", event.Kind, event.WalletAddress)

	if err := w.service.RecordEvent(ctx, event); err != nil {
		w.logger.Errorf(err, "Failed to save binding event %s", event.EventID)
		return
	}
}
