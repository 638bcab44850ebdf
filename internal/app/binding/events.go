package binding

import (
	"context"

	"learnsol-identity/pkg/rabbitmq"
	"learnsol-identity/pkg/utilities"
	"learnsol-identity/pkg/utilities/timeutil"
)

type EventKind string

const (
	EventNonceIssued  EventKind = "nonce_issued"
	EventWalletBound  EventKind = "wallet_bound"
	EventBindRejected EventKind = "bind_rejected"
)

const BindingEventPublisherAlias rabbitmq.PublisherAlias = "BindingEventPublisher"

// Event describes one step of the binding flow. It never carries the nonce
// or the signature.
type Event struct {
	EventID       string           `json:"event_id"`
	Kind          EventKind        `json:"kind"`
	WalletAddress string           `json:"wallet_address"`
	Subject       string           `json:"subject"`
	Reason        string           `json:"reason,omitempty"`
	OccurredAt    timeutil.TimeUTC `json:"occurred_at"`
}

func (e Event) Serialize() ([]byte, error) {
	return utilities.Serialize(e)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

type EventPublisherFunc func(ctx context.Context, event Event) error

func (f EventPublisherFunc) PublishEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

type rabbitmqEventPublisher struct {
	publisher rabbitmq.IRabbitmqPublisher
}

func NewRabbitmqEventPublisher(publisher rabbitmq.IRabbitmqPublisher) EventPublisher {
	return &rabbitmqEventPublisher{publisher: publisher}
}

func (p *rabbitmqEventPublisher) PublishEvent(ctx context.Context, event Event) error {
	return p.publisher.Publish(ctx, event)
}
