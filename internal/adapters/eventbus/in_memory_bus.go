package eventbus

import (
	"TopicBus/internal/core/ports"
	"TopicBus/internal/metrics"
	"TopicBus/internal/shared/config"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InMemoryEventBus implements the ports.EventBus interface.
// Publish is synchronous: every matched handler has returned before it does.
type InMemoryEventBus struct {
	log        zerolog.Logger
	cfg        config.EventBusConfig
	registry   *Registry
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
}

var _ ports.EventBus = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus creates a new, empty event bus. m may be nil.
func NewInMemoryEventBus(cfg config.EventBusConfig, m *metrics.Metrics, baseLogger *zerolog.Logger) *InMemoryEventBus {
	registry := NewRegistry(cfg.MaxSubscribers, cfg.MaxTopicsPerSubscriber)
	return &InMemoryEventBus{
		log:        baseLogger.With().Str("component", "in_memory_bus").Logger(),
		cfg:        cfg,
		registry:   registry,
		dispatcher: NewDispatcher(registry, m, baseLogger),
		metrics:    m,
	}
}

// Subscribe registers interest of subscriberID in topic.
func (b *InMemoryEventBus) Subscribe(subscriberID, topic string, handler ports.Handler) (ports.SubscribeOutcome, error) {
	log := b.log.With().Str("subscriber_id", subscriberID).Str("topic", topic).Logger()

	if err := b.validate(subscriberID, topic); err != nil {
		log.Warn().Err(err).Msg("Rejected subscription")
		b.metrics.IncSubscriptionChange("subscribe", "invalid")
		return ports.OutcomeNone, err
	}

	outcome, err := b.registry.Register(subscriberID, topic, handler)
	if err != nil {
		log.Warn().Err(err).Msg("Subscription skipped")
		b.metrics.IncSubscriptionChange("subscribe", outcomeLabel(err))
		return outcome, err
	}

	switch outcome {
	case ports.OutcomeSubscribed:
		log.Info().Msg("New subscriber registered")
	case ports.OutcomeTopicAdded:
		log.Info().Msg("Subscriber subscribed to additional topic")
	case ports.OutcomeAlreadySubscribed:
		log.Debug().Msg("Subscriber already subscribed to topic")
	}
	b.metrics.IncSubscriptionChange("subscribe", outcome.String())
	b.metrics.SetSubscribers(b.registry.Len())
	return outcome, nil
}

// Unsubscribe removes topic from the interests of subscriberID.
func (b *InMemoryEventBus) Unsubscribe(subscriberID, topic string) error {
	log := b.log.With().Str("subscriber_id", subscriberID).Str("topic", topic).Logger()

	if err := b.validate(subscriberID, topic); err != nil {
		log.Warn().Err(err).Msg("Rejected unsubscription")
		b.metrics.IncSubscriptionChange("unsubscribe", "invalid")
		return err
	}

	if err := b.registry.Deregister(subscriberID, topic); err != nil {
		log.Warn().Err(err).Msg("Unsubscribe had no effect")
		b.metrics.IncSubscriptionChange("unsubscribe", outcomeLabel(err))
		return err
	}

	log.Info().Msg("Subscriber unsubscribed from topic")
	b.metrics.IncSubscriptionChange("unsubscribe", "removed")
	return nil
}

// Unregister removes subscriberID and its handler from the bus.
func (b *InMemoryEventBus) Unregister(subscriberID string) error {
	log := b.log.With().Str("subscriber_id", subscriberID).Logger()

	if err := checkName(subscriberID, b.cfg.MaxIDLength, ports.ErrInvalidSubscriberID); err != nil {
		log.Warn().Err(err).Msg("Rejected unregistration")
		b.metrics.IncSubscriptionChange("unregister", "invalid")
		return err
	}

	if err := b.registry.Remove(subscriberID); err != nil {
		log.Warn().Err(err).Msg("Unregister had no effect")
		b.metrics.IncSubscriptionChange("unregister", outcomeLabel(err))
		return err
	}

	log.Info().Msg("Subscriber unregistered")
	b.metrics.IncSubscriptionChange("unregister", "removed")
	b.metrics.SetSubscribers(b.registry.Len())
	return nil
}

// Publish sends an event to all subscribers of a topic.
// Handler errors are returned joined, after every subscriber has been called.
func (b *InMemoryEventBus) Publish(ctx context.Context, topic string, payload any, sourceID string) error {
	if err := checkName(topic, b.cfg.MaxTopicLength, ports.ErrInvalidTopic); err != nil {
		b.log.Warn().Err(err).Str("topic", topic).Str("source_id", sourceID).Msg("Rejected publish")
		b.metrics.IncPublishRejected("invalid_topic")
		return err
	}
	if err := checkName(sourceID, b.cfg.MaxIDLength, ports.ErrInvalidSourceID); err != nil {
		b.log.Warn().Err(err).Str("topic", topic).Str("source_id", sourceID).Msg("Rejected publish")
		b.metrics.IncPublishRejected("invalid_source")
		return err
	}

	log := b.log.With().
		Str("publish_id", uuid.NewString()).
		Str("topic", topic).
		Str("source_id", sourceID).
		Logger()
	ctx = log.WithContext(ctx)

	log.Debug().Msg("Publishing event")
	b.metrics.IncPublished(topic)

	event := ports.Event{
		Topic:    topic,
		Payload:  payload,
		SourceID: sourceID,
	}
	if err := b.dispatcher.Dispatch(ctx, event); err != nil {
		return fmt.Errorf("publish %q: %w", topic, err)
	}
	return nil
}

// Topics returns the current interests of subscriberID.
func (b *InMemoryEventBus) Topics(subscriberID string) ([]string, bool) {
	return b.registry.Topics(subscriberID)
}

// SubscriberCount returns the number of registered subscribers.
func (b *InMemoryEventBus) SubscriberCount() int {
	return b.registry.Len()
}

func (b *InMemoryEventBus) validate(subscriberID, topic string) error {
	if err := checkName(subscriberID, b.cfg.MaxIDLength, ports.ErrInvalidSubscriberID); err != nil {
		return err
	}
	return checkName(topic, b.cfg.MaxTopicLength, ports.ErrInvalidTopic)
}

func checkName(value string, maxLen int, sentinel error) error {
	if value == "" {
		return fmt.Errorf("%w: must not be empty", sentinel)
	}
	if maxLen > 0 && len(value) > maxLen {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", sentinel, len(value), maxLen)
	}
	return nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ports.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ports.ErrSubscriberNotFound):
		return "not_found"
	case errors.Is(err, ports.ErrNotSubscribed):
		return "not_subscribed"
	case errors.Is(err, ports.ErrNilHandler):
		return "invalid"
	default:
		return "error"
	}
}
