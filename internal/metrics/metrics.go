package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Dispatches    *prometheus.CounterVec
	StatusChanges *prometheus.CounterVec
}

// New registers the service collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "woo_notify",
			Name:      "notification_dispatches_total",
			Help:      "Notification dispatch results by outcome and reason.",
		}, []string{"outcome", "reason"}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "woo_notify",
			Name:      "order_status_changes_total",
			Help:      "Order status changes by target status and result.",
		}, []string{"status", "result"}),
	}
	reg.MustRegister(
		m.Dispatches,
		m.StatusChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDispatch counts one dispatch result. Safe on a nil receiver.
func (m *Metrics) ObserveDispatch(outcome, reason string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(outcome, reason).Inc()
}

// ObserveStatusChange counts one status change attempt. Safe on a nil receiver.
func (m *Metrics) ObserveStatusChange(status, result string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(status, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
