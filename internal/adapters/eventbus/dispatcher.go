package eventbus

import (
	"TopicBus/internal/core/ports"
	"TopicBus/internal/metrics"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Dispatcher delivers one event to every interested subscriber, in the caller's goroutine.
type Dispatcher struct {
	registry *Registry
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher reading from registry. m may be nil.
func NewDispatcher(registry *Registry, m *metrics.Metrics, baseLogger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		metrics:  m,
		log:      baseLogger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch runs each matched handler once, in registration order.
// A failing handler does not stop the others; all failures are returned joined.
func (d *Dispatcher) Dispatch(ctx context.Context, event ports.Event) error {
	var errs []error
	delivered := 0

	for m := range d.registry.FindInterested(event.Topic) {
		err := m.Handler.Handle(ctx, event)
		delivered++
		d.metrics.IncDelivery(event.Topic, err != nil)
		if err != nil {
			d.log.Error().Err(err).
				Str("topic", event.Topic).
				Str("subscriber_id", m.SubscriberID).
				Msg("Event handler failed")
			errs = append(errs, &ports.HandlerError{SubscriberID: m.SubscriberID, Topic: event.Topic, Err: err})
		}
	}

	d.log.Debug().
		Str("topic", event.Topic).
		Str("source_id", event.SourceID).
		Int("handlers", delivered).
		Int("failed", len(errs)).
		Msg("Event dispatched")

	return errors.Join(errs...)
}
