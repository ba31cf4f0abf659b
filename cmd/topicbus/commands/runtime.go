package commands

import (
	"TopicBus/internal/adapters/eventbus"
	"TopicBus/internal/adapters/telegram"
	"TopicBus/internal/metrics"
	"TopicBus/internal/shared/config"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// runtime holds what every scenario shares: one bus, its metrics and the
// optional Telegram notifier.
type runtime struct {
	cfg        *config.Config
	baseLogger *zerolog.Logger
	log        zerolog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	bus      *eventbus.InMemoryEventBus
	notifier *telegram.NewsNotifier

	metricsSrv  *http.Server
	metricsAddr string
}

func newRuntime(cfg *config.Config, baseLogger *zerolog.Logger) (*runtime, error) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	rt := &runtime{
		cfg:        cfg,
		baseLogger: baseLogger,
		log:        baseLogger.With().Str("component", "runtime").Logger(),
		registry:   registry,
		metrics:    m,
		bus:        eventbus.NewInMemoryEventBus(cfg.EventBus, m, baseLogger),
	}

	if cfg.Telegram.Enabled() {
		api, err := telegram.NewBotAPI(cfg.Telegram.Token, baseLogger)
		if err != nil {
			return nil, err
		}
		client := telegram.NewClient(api, baseLogger)
		rt.notifier = telegram.NewNewsNotifier(client, cfg.Telegram.ChatID, baseLogger)
	}

	if cfg.Metrics.Addr != "" {
		if err := rt.serveMetrics(cfg.Metrics.Addr); err != nil {
			return nil, err
		}
	}

	rt.log.Info().
		Int("max_subscribers", cfg.EventBus.MaxSubscribers).
		Int("max_topics", cfg.EventBus.MaxTopicsPerSubscriber).
		Bool("telegram", rt.notifier != nil).
		Str("metrics_addr", cfg.Metrics.Addr).
		Msg("Runtime initialized")
	return rt, nil
}

// serveMetrics exposes the registry on addr until close is called.
func (rt *runtime) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		rt.log.Error().Err(err).Str("addr", addr).Msg("Failed to listen for metrics")
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	rt.metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := rt.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	rt.metricsAddr = ln.Addr().String()
	rt.log.Info().Str("addr", rt.metricsAddr).Msg("Serving metrics")
	return nil
}

func (rt *runtime) close(ctx context.Context) error {
	if rt.metricsSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return rt.metricsSrv.Shutdown(ctx)
}
