// Package metrics holds the prometheus instruments exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeInvalidMAC = "invalid_mac"
	OutcomeError      = "error"
)

// Registry holds all hostconf metrics. Each Registry owns its own
// prometheus registry so independent servers do not collide.
type Registry struct {
	reg *prometheus.Registry

	// Provisioning metrics
	Lookups *prometheus.CounterVec

	// Inventory metrics
	InventoryHosts      prometheus.Gauge
	InventoryInterfaces prometheus.Gauge
	InventoryConflicts  prometheus.Gauge

	// HTTP metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Request log stream
	LogClients prometheus.Gauge
}

// New creates a Registry with the Go runtime and process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,

		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hostconf_lookups_total",
			Help: "Provisioning lookups by output kind and outcome",
		}, []string{"kind", "outcome"}),

		InventoryHosts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostconf_inventory_hosts",
			Help: "Hosts declared in the loaded inventory",
		}),
		InventoryInterfaces: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostconf_inventory_interfaces",
			Help: "Interfaces declared in the loaded inventory",
		}),
		InventoryConflicts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostconf_inventory_mac_conflicts",
			Help: "Interfaces whose MAC was already declared by an earlier interface",
		}),

		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hostconf_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		APILatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hostconf_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		LogClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hostconf_log_stream_clients",
			Help: "Connected request log stream clients",
		}),
	}
}

// SetInventory records the size of the loaded inventory.
func (r *Registry) SetInventory(hosts, interfaces, conflicts int) {
	r.InventoryHosts.Set(float64(hosts))
	r.InventoryInterfaces.Set(float64(interfaces))
	r.InventoryConflicts.Set(float64(conflicts))
}

// ObserveLookup counts one provisioning lookup.
func (r *Registry) ObserveLookup(kind, outcome string) {
	r.Lookups.WithLabelValues(kind, outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(route, method string, status int, latency time.Duration) {
	r.APIRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.APILatency.WithLabelValues(route).Observe(latency.Seconds())
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
