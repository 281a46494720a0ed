package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
)

// Publisher sends one JSON message to the exchange under routingKey.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// ChangePublisher forwards changes to the events exchange, routed by
// "<collection>.<action>" so consumers bind only to the collections they render.
type ChangePublisher struct {
	pub Publisher
}

func NewChangePublisher(pub Publisher) *ChangePublisher {
	return &ChangePublisher{pub: pub}
}

func (p *ChangePublisher) Notify(ctx context.Context, changes ...event.Change) error {
	var errs []error
	for _, ch := range changes {
		if err := p.pub.PublishJSON(ctx, ch.RoutingKey(), ch); err != nil {
			errs = append(errs, fmt.Errorf("publish %s %s: %w", ch.RoutingKey(), ch.ID, err))
		}
	}
	return errors.Join(errs...)
}

var _ event.Notifier = (*ChangePublisher)(nil)
