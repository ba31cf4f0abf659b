// Package news models news agencies that publish on the event bus and the
// people who follow news domains through it.
package news

import (
	"TopicBus/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidDomain    = errors.New("domain must not be empty")
	ErrDomainExists     = errors.New("agency already publishes on domain")
	ErrDomainNotCovered = errors.New("agency does not publish on domain")
	ErrAlreadyFollowing = errors.New("person already follows domain")
	ErrNotFollowing     = errors.New("person does not follow domain")
	ErrAgencyExists     = errors.New("agency already registered")
	ErrAgencyNotFound   = errors.New("agency not found")
	ErrPersonExists     = errors.New("person already registered")
	ErrPersonNotFound   = errors.New("person not found")
)

// News is the payload of every event an agency publishes.
// The event topic is the news domain.
type News struct {
	ID          uuid.UUID
	Domain      string
	Content     string
	Agency      string
	PublishedAt time.Time
}

// Agency publishes news on the domains it covers.
type Agency struct {
	ID string

	bus ports.EventBus
	log zerolog.Logger
	now func() time.Time

	mu      sync.RWMutex
	domains []string
}

// NewAgency creates an agency covering no domains yet.
func NewAgency(id string, bus ports.EventBus, baseLogger *zerolog.Logger) *Agency {
	return &Agency{
		ID:  id,
		bus: bus,
		log: baseLogger.With().Str("component", "news_agency").Str("agency_id", id).Logger(),
		now: time.Now,
	}
}

// AddDomain makes the agency cover domain.
func (a *Agency) AddDomain(domain string) error {
	if domain == "" {
		return ErrInvalidDomain
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if slices.Contains(a.domains, domain) {
		return fmt.Errorf("%w: %s", ErrDomainExists, domain)
	}
	a.domains = append(a.domains, domain)
	a.log.Info().Str("domain", domain).Msg("Domain added to agency")
	return nil
}

// Domains returns the covered domains in the order they were added.
func (a *Agency) Domains() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.domains)
}

// Covers reports whether the agency publishes on domain.
func (a *Agency) Covers(domain string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Contains(a.domains, domain)
}

// Publish sends a piece of news to everyone following domain.
// The returned News is valid even when some followers failed to handle it.
func (a *Agency) Publish(ctx context.Context, domain, content string) (News, error) {
	if !a.Covers(domain) {
		a.log.Warn().Str("domain", domain).Msg("Agency does not publish on domain")
		return News{}, fmt.Errorf("%w: %s on %s", ErrDomainNotCovered, a.ID, domain)
	}

	item := News{
		ID:          uuid.New(),
		Domain:      domain,
		Content:     content,
		Agency:      a.ID,
		PublishedAt: a.now(),
	}

	a.log.Info().Str("domain", domain).Str("news_id", item.ID.String()).Msg("Publishing news")
	if err := a.bus.Publish(ctx, domain, item, a.ID); err != nil {
		return item, err
	}
	return item, nil
}
