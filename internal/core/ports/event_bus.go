package ports

import "context"

// Event is what a publisher hands to the bus. It is passed by value to every
// handler and never kept by the bus after Publish returns.
type Event struct {
	Topic    string
	Payload  any
	SourceID string // Who published it
}

// Handler is the single capability a subscriber must provide.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// EventHandler is a function that can handle an event.
// It lets plain functions be used where a Handler is expected.
type EventHandler func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f EventHandler) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// SubscribeOutcome reports what a successful Subscribe call did.
type SubscribeOutcome int

const (
	// OutcomeNone is returned alongside an error.
	OutcomeNone SubscribeOutcome = iota
	// OutcomeSubscribed means a new subscriber was created.
	OutcomeSubscribed
	// OutcomeTopicAdded means an existing subscriber gained a topic.
	OutcomeTopicAdded
	// OutcomeAlreadySubscribed means nothing changed.
	OutcomeAlreadySubscribed
)

func (o SubscribeOutcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSubscribed:
		return "subscribed"
	case OutcomeTopicAdded:
		return "topic_added"
	case OutcomeAlreadySubscribed:
		return "already_subscribed"
	default:
		return "unknown"
	}
}

// EventBus defines the interface for our in-process pub/sub system
type EventBus interface {
	// Subscribe registers interest of subscriberID in topic.
	// The handler is only stored the first time an id is seen.
	Subscribe(subscriberID, topic string, handler Handler) (SubscribeOutcome, error)

	// Unsubscribe removes topic from the subscriber's interests.
	Unsubscribe(subscriberID, topic string) error

	// Unregister forgets the subscriber together with its handler, so the id
	// can be subscribed again with a new one.
	Unregister(subscriberID string) error

	// Publish delivers an event to every subscriber of topic before returning.
	Publish(ctx context.Context, topic string, payload any, sourceID string) error
}
