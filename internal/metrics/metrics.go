// Package metrics owns the Prometheus collectors of the console.
//
// Collectors are registered on a private prometheus.Registry rather than the
// global default one, so tests can build as many Registries as they like
// without "duplicate metrics collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "truassets"

// Registry bundles the collectors and the registry they live on.
type Registry struct {
	reg *prometheus.Registry

	mutations     *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	loginSyncs    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates a Registry with the Go runtime and process collectors plus the
// application collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Store mutations by store and operation.",
		}, []string{"store", "op"}),
		writeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kv_write_failures_total",
			Help:      "Failed writes to the durable key/value medium, by key.",
		}, []string{"key"}),
		loginSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_sync_total",
			Help:      "Login events processed by the user directory, by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.mutations,
		r.writeFailures,
		r.loginSyncs,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Mutation counts one store mutation.
func (r *Registry) Mutation(store, op string) {
	r.mutations.WithLabelValues(store, op).Inc()
}

// WriteFailure counts one failed key/value write.
func (r *Registry) WriteFailure(key string) {
	r.writeFailures.WithLabelValues(key).Inc()
}

// LoginSync counts one processed login event ("created", "updated",
// "ignored").
func (r *Registry) LoginSync(outcome string) {
	r.loginSyncs.WithLabelValues(outcome).Inc()
}

// ObserveRequest records a finished HTTP request.
func (r *Registry) ObserveRequest(method string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Handler serves the exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
