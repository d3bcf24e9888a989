package invoices

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

const (
	EventInvoiceCreated       = "invoice.created"
	EventInvoiceUpdated       = "invoice.updated"
	EventInvoiceStatusChanged = "invoice.status_changed"
)

// Event is the lifecycle notification published after a committed write.
type Event struct {
	Type        string              `json:"-"`
	InvoiceID   uuid.UUID           `json:"invoice_id"`
	UserID      uuid.UUID           `json:"user_id"`
	Status      enums.InvoiceStatus `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// EventPublisher delivers invoice lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no topic is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

type topicPublisher struct {
	publisher *gcppubsub.Publisher
}

// NewTopicPublisher publishes events as JSON messages on a Pub/Sub topic.
// A nil publisher yields a NoopPublisher.
func NewTopicPublisher(p *gcppubsub.Publisher) EventPublisher {
	if p == nil {
		return NoopPublisher{}
	}
	return &topicPublisher{publisher: p}
}

func (p *topicPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := eventMessage(event)
	if err != nil {
		return err
	}
	_, err = p.publisher.Publish(ctx, msg).Get(ctx)
	return err
}

func eventMessage(event Event) (*gcppubsub.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": event.Type,
			"invoice_id": event.InvoiceID.String(),
		},
	}, nil
}
