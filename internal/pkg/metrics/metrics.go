// Package metrics exposes Prometheus instruments for registry mutations and
// the change-notification hub.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry labels
const (
	RegistryEvents  = "events"
	RegistrySurveys = "surveys"
	RegistryPosts   = "posts"
)

// Outcome labels shared by all registries
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeFailed  = "failed"
)

var (
	registryMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hobbysphere_registry_mutations_total",
		Help: "Registry mutations by registry, operation and outcome",
	}, []string{"registry", "operation", "outcome"})

	timelineBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hobbysphere_timeline_builds_total",
		Help: "Timeline builds by filter",
	}, []string{"filter"})

	timelineItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hobbysphere_timeline_items",
		Help:    "Number of items returned by a timeline build",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	wsSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hobbysphere_ws_subscribers",
		Help: "Currently connected change-notification subscribers",
	})

	wsNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hobbysphere_ws_notifications_total",
		Help: "Change notifications published by type",
	}, []string{"type"})
)

// ObserveMutation counts one registry mutation
func ObserveMutation(registry, operation, outcome string) {
	registryMutations.WithLabelValues(registry, operation, outcome).Inc()
}

// ObserveTimeline records one timeline build
func ObserveTimeline(filter string, items int) {
	timelineBuilds.WithLabelValues(filter).Inc()
	timelineItems.Observe(float64(items))
}

// SubscriberConnected tracks a new websocket subscriber
func SubscriberConnected() { wsSubscribers.Inc() }

// SubscriberDisconnected tracks a websocket subscriber leaving
func SubscriberDisconnected() { wsSubscribers.Dec() }

// NotificationPublished counts a published change notification
func NotificationPublished(notificationType string) {
	wsNotifications.WithLabelValues(notificationType).Inc()
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
