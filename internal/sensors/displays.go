package sensors

import (
	"TopicBus/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrUnexpectedPayload is returned by displays for events that do not carry a Reading.
var ErrUnexpectedPayload = errors.New("unexpected payload")

func readingFrom(event ports.Event) (Reading, error) {
	switch r := event.Payload.(type) {
	case Reading:
		return r, nil
	case *Reading:
		if r != nil {
			return *r, nil
		}
	}
	return Reading{}, fmt.Errorf("%w on topic %s: %T", ErrUnexpectedPayload, event.Topic, event.Payload)
}

// Attach subscribes handler under id to every kind.
// It stops at the first kind that cannot be subscribed.
func Attach(bus ports.EventBus, id string, handler ports.Handler, kinds ...string) error {
	for _, kind := range kinds {
		if _, err := bus.Subscribe(id, kind, handler); err != nil {
			return fmt.Errorf("attach %s to %s: %w", id, kind, err)
		}
	}
	return nil
}

// NumericDisplay prints the raw value of every reading.
type NumericDisplay struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNumericDisplay creates a display writing to out.
func NewNumericDisplay(out io.Writer) *NumericDisplay {
	return &NumericDisplay{out: out}
}

// Handle implements ports.Handler.
func (d *NumericDisplay) Handle(ctx context.Context, event ports.Event) error {
	r, err := readingFrom(event)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = fmt.Fprintf(d.out, "[NumericDisplay] Value from %s: %.2f\n", event.SourceID, r.Value)
	return err
}

// TextDisplay prints a sentence describing every reading.
type TextDisplay struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTextDisplay creates a display writing to out.
func NewTextDisplay(out io.Writer) *TextDisplay {
	return &TextDisplay{out: out}
}

// Handle implements ports.Handler.
func (d *TextDisplay) Handle(ctx context.Context, event ports.Event) error {
	r, err := readingFrom(event)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = fmt.Fprintf(d.out, "[TextDisplay] %s reported a %s value of %.2f\n", event.SourceID, event.Topic, r.Value)
	return err
}

// MaxValueDisplay keeps the highest value seen per topic and announces new maxima.
type MaxValueDisplay struct {
	mu     sync.Mutex
	out    io.Writer
	maxima map[string]maxEntry
}

type maxEntry struct {
	value  float64
	source string
}

// NewMaxValueDisplay creates a display writing to out.
func NewMaxValueDisplay(out io.Writer) *MaxValueDisplay {
	return &MaxValueDisplay{out: out, maxima: make(map[string]maxEntry)}
}

// Handle implements ports.Handler.
func (d *MaxValueDisplay) Handle(ctx context.Context, event ports.Event) error {
	r, err := readingFrom(event)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := fmt.Fprintf(d.out, "[MaxValueDisplay] Received %s: %.2f from %s\n", event.Topic, r.Value, event.SourceID); err != nil {
		return err
	}

	current, seen := d.maxima[event.Topic]
	if seen && r.Value <= current.value {
		return nil
	}
	d.maxima[event.Topic] = maxEntry{value: r.Value, source: event.SourceID}
	_, err = fmt.Fprintf(d.out, "[MaxValueDisplay] New max %s: %.2f from %s\n", event.Topic, r.Value, event.SourceID)
	return err
}

// Max returns the highest value seen on topic and who reported it.
func (d *MaxValueDisplay) Max(topic string) (value float64, source string, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.maxima[topic]
	return e.value, e.source, ok
}
