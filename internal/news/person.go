package news

import (
	"TopicBus/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// SubscriberPrefix namespaces people on the bus.
const SubscriberPrefix = "person:"

// Person follows news domains. Their own domain list is mirrored onto the bus
// under a single subscriber id, and every received item lands in their inbox.
type Person struct {
	ID string

	bus ports.EventBus
	out io.Writer
	log zerolog.Logger

	mu      sync.Mutex
	domains []string
	inbox   []News
}

// NewPerson creates a person following nothing. Received news is printed to out.
func NewPerson(id string, bus ports.EventBus, out io.Writer, baseLogger *zerolog.Logger) *Person {
	return &Person{
		ID:  id,
		bus: bus,
		out: out,
		log: baseLogger.With().Str("component", "person").Str("person_id", id).Logger(),
	}
}

// SubscriberID is the id the person uses on the bus.
func (p *Person) SubscriberID() string {
	return SubscriberPrefix + p.ID
}

// Follow subscribes the person to domain.
func (p *Person) Follow(domain string) error {
	if domain == "" {
		return ErrInvalidDomain
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.Contains(p.domains, domain) {
		return fmt.Errorf("%w: %s", ErrAlreadyFollowing, domain)
	}
	if _, err := p.bus.Subscribe(p.SubscriberID(), domain, p); err != nil {
		p.log.Error().Err(err).Str("domain", domain).Msg("Failed to subscribe person")
		return err
	}
	p.domains = append(p.domains, domain)
	p.log.Info().Str("domain", domain).Msg("Person subscribed to domain")
	return nil
}

// Unfollow unsubscribes the person from domain.
func (p *Person) Unfollow(domain string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := slices.Index(p.domains, domain)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFollowing, domain)
	}
	if err := p.bus.Unsubscribe(p.SubscriberID(), domain); err != nil {
		p.log.Error().Err(err).Str("domain", domain).Msg("Failed to unsubscribe person")
		return err
	}
	p.domains = slices.Delete(p.domains, i, i+1)
	p.log.Info().Str("domain", domain).Msg("Person unsubscribed from domain")
	return nil
}

// Leave drops every subscription of the person and removes them from the bus.
func (p *Person) Leave() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.bus.Unregister(p.SubscriberID()); err != nil && !errors.Is(err, ports.ErrSubscriberNotFound) {
		p.log.Error().Err(err).Msg("Failed to remove person from bus")
		return err
	}
	p.domains = nil
	p.log.Info().Msg("Person left the bus")
	return nil
}

// Domains returns the followed domains in order.
func (p *Person) Domains() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.domains)
}

// Inbox returns the news received so far.
func (p *Person) Inbox() []News {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.inbox)
}

// Handle implements ports.Handler.
func (p *Person) Handle(ctx context.Context, event ports.Event) error {
	item, ok := event.Payload.(News)
	if !ok {
		return fmt.Errorf("person %s: unexpected payload %T on topic %s", p.ID, event.Payload, event.Topic)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.inbox = append(p.inbox, item)
	_, err := fmt.Fprintf(p.out, "[News Reception] %s received news in domain %s from %s: %s\n",
		p.ID, item.Domain, item.Agency, item.Content)
	return err
}
