package sensors

import (
	"TopicBus/internal/adapters/eventbus"
	"TopicBus/internal/core/ports"
	"TopicBus/internal/shared/config"
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newBus() *eventbus.InMemoryEventBus {
	nopLogger := zerolog.Nop()
	return eventbus.NewInMemoryEventBus(config.EventBusConfig{}, nil, &nopLogger)
}

func TestGenerate_Ranges(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	testCases := []struct {
		kind     string
		min, max float64
	}{
		{KindTemperature, 15, 40},
		{KindWaterLevel, 0, 10},
		{KindHumidity, 30, 100},
		{"Pressure", 0, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			for i := 0; i < 1000; i++ {
				v := Generate(rng, tc.kind)
				require.GreaterOrEqual(t, v, tc.min)
				require.Less(t, v, tc.max)
			}
		})
	}
}

func TestSimulator_Read_PublishesOnKindTopic(t *testing.T) {
	ctx := context.Background()
	bus := newBus()
	nopLogger := zerolog.Nop()
	sim := NewSimulator(bus, rand.New(rand.NewPCG(7, 7)), &nopLogger)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	sim.now = func() time.Time { return fixed }

	var got []ports.Event
	_, err := bus.Subscribe("listener", KindHumidity, ports.EventHandler(func(ctx context.Context, e ports.Event) error {
		got = append(got, e)
		return nil
	}))
	require.NoError(t, err)

	reading, err := sim.Read(ctx, Sensor{ID: "HumiditySensorArad", Kind: KindHumidity})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, KindHumidity, got[0].Topic)
	assert.Equal(t, "HumiditySensorArad", got[0].SourceID)
	assert.Equal(t, reading, got[0].Payload)
	assert.Equal(t, fixed, reading.TakenAt)

	// Other kinds are not delivered to the humidity listener.
	_, err = sim.Read(ctx, Sensor{ID: "TemperatureSensorArad", Kind: KindTemperature})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMaxValueDisplay_TracksPerTopicMaxima(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	d := NewMaxValueDisplay(&out)

	events := []struct {
		topic, source string
		value         float64
	}{
		{KindTemperature, "Timisoara", 20},
		{KindTemperature, "Arad", 18},
		{KindTemperature, "Arad", 31.5},
		{KindHumidity, "Arad", 45},
	}
	for _, e := range events {
		err := d.Handle(ctx, ports.Event{
			Topic:    e.topic,
			SourceID: e.source,
			Payload:  Reading{SensorID: e.source, Kind: e.topic, Value: e.value},
		})
		require.NoError(t, err)
	}

	v, src, ok := d.Max(KindTemperature)
	require.True(t, ok)
	assert.Equal(t, 31.5, v)
	assert.Equal(t, "Arad", src)

	v, _, ok = d.Max(KindHumidity)
	require.True(t, ok)
	assert.Equal(t, 45.0, v)

	_, _, ok = d.Max(KindWaterLevel)
	assert.False(t, ok)

	assert.Equal(t, 3, strings.Count(out.String(), "New max"))
	assert.Contains(t, out.String(), "[MaxValueDisplay] New max Temperature: 31.50 from Arad")
}

func TestMaxValueDisplays_HaveIndependentState(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	a := NewMaxValueDisplay(&out)
	b := NewMaxValueDisplay(&out)

	require.NoError(t, a.Handle(ctx, ports.Event{Topic: KindTemperature, SourceID: "s", Payload: Reading{Value: 30}}))

	_, _, ok := b.Max(KindTemperature)
	assert.False(t, ok)
}

func TestDisplays_Output(t *testing.T) {
	ctx := context.Background()
	event := ports.Event{
		Topic:    KindWaterLevel,
		SourceID: "WaterLevelSensorTimisoara",
		Payload:  &Reading{Kind: KindWaterLevel, Value: 3.14159},
	}

	var numeric, text bytes.Buffer
	require.NoError(t, NewNumericDisplay(&numeric).Handle(ctx, event))
	require.NoError(t, NewTextDisplay(&text).Handle(ctx, event))

	assert.Equal(t, "[NumericDisplay] Value from WaterLevelSensorTimisoara: 3.14\n", numeric.String())
	assert.Equal(t, "[TextDisplay] WaterLevelSensorTimisoara reported a WaterLevel value of 3.14\n", text.String())
}

func TestDisplays_RejectUnexpectedPayload(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	event := ports.Event{Topic: KindTemperature, SourceID: "s", Payload: 21.0}

	handlers := map[string]ports.Handler{
		"numeric": NewNumericDisplay(&out),
		"text":    NewTextDisplay(&out),
		"max":     NewMaxValueDisplay(&out),
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, h.Handle(ctx, event), ErrUnexpectedPayload)
		})
	}
	assert.Empty(t, out.String())
}

func TestSimulator_Run_FansOutToDisplays(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	bus := newBus()
	nopLogger := zerolog.Nop()
	sim := NewSimulator(bus, rand.New(rand.NewPCG(3, 4)), &nopLogger)

	var out syncBuffer
	numeric := NewNumericDisplay(&out)
	maxDisplay := NewMaxValueDisplay(&out)
	kinds := []string{KindTemperature, KindWaterLevel, KindHumidity}
	require.NoError(t, Attach(bus, "NumericDisplay1", numeric, kinds...))
	require.NoError(t, Attach(bus, "MaxValueDisplay1", maxDisplay, kinds...))

	sensors := []Sensor{
		{ID: "TemperatureSensorTimisoara", Kind: KindTemperature},
		{ID: "TemperatureSensorArad", Kind: KindTemperature},
		{ID: "HumiditySensorArad", Kind: KindHumidity},
	}
	require.NoError(t, sim.Run(ctx, sensors, 4, 0))

	assert.Equal(t, 12, strings.Count(out.String(), "[NumericDisplay]"))
	assert.Equal(t, 12, strings.Count(out.String(), "[MaxValueDisplay] Received"))
	_, _, ok := maxDisplay.Max(KindTemperature)
	assert.True(t, ok)
	_, _, ok = maxDisplay.Max(KindWaterLevel)
	assert.False(t, ok)
}

func TestSimulator_Run_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nopLogger := zerolog.Nop()
	sim := NewSimulator(newBus(), nil, &nopLogger)
	err := sim.Run(ctx, []Sensor{{ID: "s", Kind: KindTemperature}}, 3, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttach_ReportsFailure(t *testing.T) {
	nopLogger := zerolog.Nop()
	bus := eventbus.NewInMemoryEventBus(config.EventBusConfig{MaxTopicsPerSubscriber: 1}, nil, &nopLogger)

	err := Attach(bus, "TextDisplay1", NewTextDisplay(&bytes.Buffer{}), KindTemperature, KindHumidity)
	assert.ErrorIs(t, err, ports.ErrTooManyTopics)
}

// syncBuffer is shared by displays that run on different goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
