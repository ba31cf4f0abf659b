package news

import (
	"TopicBus/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Directory keeps the agencies and people sharing one bus.
type Directory struct {
	bus        ports.EventBus
	out        io.Writer
	baseLogger *zerolog.Logger
	log        zerolog.Logger

	mu       sync.RWMutex
	agencies map[string]*Agency
	people   map[string]*Person
}

// NewDirectory creates an empty directory. People print received news to out.
func NewDirectory(bus ports.EventBus, out io.Writer, baseLogger *zerolog.Logger) *Directory {
	return &Directory{
		bus:        bus,
		out:        out,
		baseLogger: baseLogger,
		log:        baseLogger.With().Str("component", "news_directory").Logger(),
		agencies:   make(map[string]*Agency),
		people:     make(map[string]*Person),
	}
}

// RegisterAgency adds a new agency covering the given domains.
func (d *Directory) RegisterAgency(id string, domains ...string) (*Agency, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.agencies[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAgencyExists, id)
	}
	agency := NewAgency(id, d.bus, d.baseLogger)
	for _, domain := range domains {
		if err := agency.AddDomain(domain); err != nil {
			return nil, err
		}
	}
	d.agencies[id] = agency
	d.log.Info().Str("agency_id", id).Strs("domains", domains).Msg("News agency registered")
	return agency, nil
}

// RegisterPerson adds a new person following the given domains.
func (d *Directory) RegisterPerson(id string, domains ...string) (*Person, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.people[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonExists, id)
	}
	if err := checkDomains(domains); err != nil {
		return nil, err
	}

	person := NewPerson(id, d.bus, d.out, d.baseLogger)
	for _, domain := range domains {
		if err := person.Follow(domain); err != nil {
			// The bus keeps the first handler it sees for an id, so a half
			// registered person has to be removed before the id is reused.
			if leaveErr := person.Leave(); leaveErr != nil {
				return nil, errors.Join(err, leaveErr)
			}
			return nil, err
		}
	}
	d.people[id] = person
	d.log.Info().Str("person_id", id).Msg("Person registered")
	return person, nil
}

func checkDomains(domains []string) error {
	seen := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		if domain == "" {
			return ErrInvalidDomain
		}
		if _, ok := seen[domain]; ok {
			return fmt.Errorf("%w: %s", ErrAlreadyFollowing, domain)
		}
		seen[domain] = struct{}{}
	}
	return nil
}

// Agency looks up a registered agency.
func (d *Directory) Agency(id string) (*Agency, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	agency, ok := d.agencies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgencyNotFound, id)
	}
	return agency, nil
}

// Person looks up a registered person.
func (d *Directory) Person(id string) (*Person, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	person, ok := d.people[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, id)
	}
	return person, nil
}

// PublishNews publishes content from agencyID on domain.
func (d *Directory) PublishNews(ctx context.Context, agencyID, domain, content string) (News, error) {
	agency, err := d.Agency(agencyID)
	if err != nil {
		return News{}, err
	}
	return agency.Publish(ctx, domain, content)
}
