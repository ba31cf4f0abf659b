// Package sensors simulates environmental sensors that publish readings on the
// event bus, and the displays that consume them.
package sensors

import (
	"TopicBus/internal/core/ports"
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sensor kinds double as bus topics.
const (
	KindTemperature = "Temperature"
	KindWaterLevel  = "WaterLevel"
	KindHumidity    = "Humidity"
)

// Reading is the payload published for every sensor measurement.
type Reading struct {
	SensorID string
	Kind     string
	Value    float64
	TakenAt  time.Time
}

// Sensor identifies one simulated device.
type Sensor struct {
	ID   string
	Kind string
}

// valueRange is [min, min+span).
type valueRange struct {
	min, span float64
}

var ranges = map[string]valueRange{
	KindTemperature: {min: 15, span: 25}, // °C
	KindWaterLevel:  {min: 0, span: 10},  // m
	KindHumidity:    {min: 30, span: 70}, // %
}

var genericRange = valueRange{min: 0, span: 100}

// Generate draws a plausible value for kind from rng.
func Generate(rng *rand.Rand, kind string) float64 {
	r, ok := ranges[kind]
	if !ok {
		r = genericRange
	}
	return r.min + rng.Float64()*r.span
}

// Simulator publishes sensor readings on a bus.
type Simulator struct {
	bus ports.EventBus
	log zerolog.Logger
	now func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewSimulator creates a simulator. A nil rng is replaced by a time-seeded one.
func NewSimulator(bus ports.EventBus, rng *rand.Rand, baseLogger *zerolog.Logger) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Simulator{
		bus: bus,
		log: baseLogger.With().Str("component", "sensor_simulator").Logger(),
		now: time.Now,
		rng: rng,
	}
}

// Read takes one measurement from sensor and publishes it on the topic named after its kind.
func (s *Simulator) Read(ctx context.Context, sensor Sensor) (Reading, error) {
	s.mu.Lock()
	value := Generate(s.rng, sensor.Kind)
	s.mu.Unlock()

	reading := Reading{
		SensorID: sensor.ID,
		Kind:     sensor.Kind,
		Value:    value,
		TakenAt:  s.now(),
	}

	s.log.Debug().
		Str("sensor_id", sensor.ID).
		Str("kind", sensor.Kind).
		Float64("value", value).
		Msg("Publishing sensor reading")

	if err := s.bus.Publish(ctx, sensor.Kind, reading, sensor.ID); err != nil {
		return reading, fmt.Errorf("sensor %s: %w", sensor.ID, err)
	}
	return reading, nil
}

// Run reads every sensor rounds times, each sensor in its own goroutine,
// waiting interval between rounds. It stops at the first error or when ctx is done.
func (s *Simulator) Run(ctx context.Context, sensors []Sensor, rounds int, interval time.Duration) error {
	s.log.Info().Int("sensors", len(sensors)).Int("rounds", rounds).Msg("Starting sensor simulation")

	g, ctx := errgroup.WithContext(ctx)
	for _, sensor := range sensors {
		g.Go(func() error {
			for round := 0; round < rounds; round++ {
				if round > 0 && interval > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(interval):
					}
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := s.Read(ctx, sensor); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("Sensor simulation stopped")
		return err
	}
	s.log.Info().Msg("Sensor simulation finished")
	return nil
}
