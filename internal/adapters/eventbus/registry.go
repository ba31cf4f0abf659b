package eventbus

import (
	"TopicBus/internal/core/ports"
	"iter"
	"slices"
	"sync"
)

// subscriber is one registry entry. Its handler is fixed at creation.
type subscriber struct {
	id      string
	topics  []string
	handler ports.Handler
}

// Match is a subscriber selected for one event.
type Match struct {
	SubscriberID string
	Topic        string
	Handler      ports.Handler
}

// Registry maps subscriber ids to their topic interests, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*subscriber
	order []*subscriber

	maxSubscribers int // 0 = unbounded
	maxTopics      int // 0 = unbounded
}

// NewRegistry creates an empty registry with the given bounds.
func NewRegistry(maxSubscribers, maxTopicsPerSubscriber int) *Registry {
	return &Registry{
		byID:           make(map[string]*subscriber),
		maxSubscribers: maxSubscribers,
		maxTopics:      maxTopicsPerSubscriber,
	}
}

// Register merges topic into the interests of id, creating the subscriber on first use.
// For a known id the handler argument is ignored.
func (r *Registry) Register(id, topic string, handler ports.Handler) (ports.SubscribeOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.byID[id]; ok {
		if slices.Contains(sub.topics, topic) {
			return ports.OutcomeAlreadySubscribed, nil
		}
		if r.maxTopics > 0 && len(sub.topics) >= r.maxTopics {
			return ports.OutcomeNone, ports.ErrTooManyTopics
		}
		sub.topics = append(sub.topics, topic)
		return ports.OutcomeTopicAdded, nil
	}

	if handler == nil {
		return ports.OutcomeNone, ports.ErrNilHandler
	}
	if r.maxSubscribers > 0 && len(r.order) >= r.maxSubscribers {
		return ports.OutcomeNone, ports.ErrTooManySubscribers
	}

	sub := &subscriber{id: id, topics: []string{topic}, handler: handler}
	r.byID[id] = sub
	r.order = append(r.order, sub)
	return ports.OutcomeSubscribed, nil
}

// Deregister removes topic from the interests of id, keeping the order of the rest.
// The subscriber itself stays registered even with no topics left.
func (r *Registry) Deregister(id, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return ports.ErrSubscriberNotFound
	}
	i := slices.Index(sub.topics, topic)
	if i < 0 {
		return ports.ErrNotSubscribed
	}
	sub.topics = slices.Delete(sub.topics, i, i+1)
	return nil
}

// Remove forgets id and its handler.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return ports.ErrSubscriberNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(s *subscriber) bool { return s == sub })
	return nil
}

// FindInterested returns the subscribers interested in topic, in registration order.
// Every iteration queries the registry again and works on its own snapshot,
// so handlers may change subscriptions while the sequence is being consumed.
func (r *Registry) FindInterested(topic string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, m := range r.snapshot(topic) {
			if !yield(m) {
				return
			}
		}
	}
}

func (r *Registry) snapshot(topic string) []Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Match
	for _, sub := range r.order {
		for _, t := range sub.topics {
			if t == topic {
				matches = append(matches, Match{SubscriberID: sub.id, Topic: t, Handler: sub.handler})
				break
			}
		}
	}
	return matches
}

// Topics returns a copy of the interests of id.
func (r *Registry) Topics(id string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(sub.topics), true
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
