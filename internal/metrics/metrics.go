// Package metrics holds the Prometheus instruments of the event bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the bus counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Published           *prometheus.CounterVec
	PublishRejected     *prometheus.CounterVec
	Deliveries          *prometheus.CounterVec
	HandlerFailures     *prometheus.CounterVec
	SubscriptionChanges *prometheus.CounterVec
	Subscribers         prometheus.Gauge
}

// New registers the bus instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topicbus_published_total",
			Help: "Total number of events published, by topic",
		}, []string{"topic"}),
		PublishRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topicbus_publish_rejected_total",
			Help: "Publish calls refused before dispatch, by reason",
		}, []string{"reason"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topicbus_deliveries_total",
			Help: "Total number of handler invocations, by topic",
		}, []string{"topic"}),
		HandlerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topicbus_handler_failures_total",
			Help: "Total number of handler invocations that returned an error, by topic",
		}, []string{"topic"}),
		SubscriptionChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "topicbus_subscription_changes_total",
			Help: "Subscribe and unsubscribe calls by operation and outcome",
		}, []string{"op", "outcome"}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "topicbus_subscribers",
			Help: "Number of registered subscribers",
		}),
	}
}

// IncPublished records one published event.
func (m *Metrics) IncPublished(topic string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(label(topic)).Inc()
}

// IncPublishRejected records a publish refused by validation.
func (m *Metrics) IncPublishRejected(reason string) {
	if m == nil {
		return
	}
	m.PublishRejected.WithLabelValues(reason).Inc()
}

// IncDelivery records one handler invocation and whether it failed.
func (m *Metrics) IncDelivery(topic string, failed bool) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(label(topic)).Inc()
	if failed {
		m.HandlerFailures.WithLabelValues(label(topic)).Inc()
	}
}

// IncSubscriptionChange records a subscribe/unsubscribe result.
func (m *Metrics) IncSubscriptionChange(op, outcome string) {
	if m == nil {
		return
	}
	m.SubscriptionChanges.WithLabelValues(op, outcome).Inc()
}

// SetSubscribers updates the subscriber gauge.
func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.Subscribers.Set(float64(n))
}

func label(topic string) string {
	if topic == "" {
		return "unknown"
	}
	return topic
}
