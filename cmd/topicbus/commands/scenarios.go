package commands

import (
	"TopicBus/internal/core/ports"
	"TopicBus/internal/news"
	"TopicBus/internal/sensors"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	sensorKinds = []string{sensors.KindTemperature, sensors.KindWaterLevel, sensors.KindHumidity}

	demoSensors = []sensors.Sensor{
		{ID: "TemperatureSensorTimisoara", Kind: sensors.KindTemperature},
		{ID: "TemperatureSensorArad", Kind: sensors.KindTemperature},
		{ID: "WaterLevelSensorTimisoara", Kind: sensors.KindWaterLevel},
		{ID: "WaterLevelSensorArad", Kind: sensors.KindWaterLevel},
		{ID: "HumiditySensorTimisoara", Kind: sensors.KindHumidity},
		{ID: "HumiditySensorArad", Kind: sensors.KindHumidity},
	}
)

type newsItem struct {
	agency, domain, content string
}

// lockedWriter serializes writes from displays fed by concurrent sensors.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runSensorScenario(ctx context.Context, rt *runtime, w io.Writer, rounds int, interval time.Duration) error {
	out := &lockedWriter{w: w}
	if err := sensors.Attach(rt.bus, "NumericDisplay1", sensors.NewNumericDisplay(out), sensorKinds...); err != nil {
		return err
	}
	maxDisplay := sensors.NewMaxValueDisplay(out)
	if err := sensors.Attach(rt.bus, "MaxValueDisplay1", maxDisplay, sensorKinds...); err != nil {
		return err
	}
	if err := sensors.Attach(rt.bus, "TextDisplay1", sensors.NewTextDisplay(out), sensorKinds...); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Simulating Sensor Readings ---")
	sim := sensors.NewSimulator(rt.bus, nil, rt.baseLogger)
	if err := sim.Run(ctx, demoSensors, rounds, interval); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Maximum Values ---")
	for _, kind := range sensorKinds {
		if value, source, ok := maxDisplay.Max(kind); ok {
			fmt.Fprintf(out, "%s: %.2f from %s\n", kind, value, source)
		}
	}
	return nil
}

func runNewsScenario(ctx context.Context, rt *runtime, out io.Writer) error {
	dir := news.NewDirectory(rt.bus, out, rt.baseLogger)

	fmt.Fprintln(out, "\n--- Setting up News Agencies ---")
	agencies := []struct {
		id      string
		domains []string
	}{
		{"BBC", []string{"Politics", "Sports", "Culture"}},
		{"CNN", []string{"Politics", "Business"}},
		{"ESPN", []string{"Sports"}},
	}
	for _, a := range agencies {
		if _, err := dir.RegisterAgency(a.id, a.domains...); err != nil {
			return err
		}
	}

	if rt.notifier != nil {
		for _, domain := range []string{"Politics", "Sports", "Culture", "Business"} {
			if _, err := rt.bus.Subscribe("telegram", domain, rt.notifier); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(out, "\n--- Registering People ---")
	people := []struct {
		id      string
		domains []string
	}{
		{"Alice", []string{"Politics", "Business"}},
		{"Bob", []string{"Sports"}},
		{"Charlie", []string{"Politics", "Culture", "Sports"}},
	}
	for _, p := range people {
		if _, err := dir.RegisterPerson(p.id, p.domains...); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\n--- Publishing News ---")
	if err := publishAll(ctx, rt, dir, []newsItem{
		{"BBC", "Politics", "New election results announced today"},
		{"CNN", "Business", "Stock market reaches all-time high"},
		{"ESPN", "Sports", "Local team wins championship"},
		{"BBC", "Culture", "New museum exhibition opens next week"},
	}); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Updating Subscriptions ---")
	charlie, err := dir.Person("Charlie")
	if err != nil {
		return err
	}
	if err := charlie.Unfollow("Sports"); err != nil {
		return err
	}
	if err := charlie.Follow("Business"); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Publishing More News ---")
	return publishAll(ctx, rt, dir, []newsItem{
		{"BBC", "Sports", "Tennis tournament final results"},
		{"CNN", "Business", "New economic forecast released"},
	})
}

// publishAll stops on publish errors but only logs failures of individual followers.
func publishAll(ctx context.Context, rt *runtime, dir *news.Directory, items []newsItem) error {
	for _, item := range items {
		_, err := dir.PublishNews(ctx, item.agency, item.domain, item.content)
		var handlerErr *ports.HandlerError
		switch {
		case err == nil:
		case errors.As(err, &handlerErr):
			rt.log.Warn().Err(err).Str("agency_id", item.agency).Msg("Some followers failed to receive news")
		default:
			return err
		}
	}
	return nil
}
