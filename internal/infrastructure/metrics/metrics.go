package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the session loop updates as it processes
// watch-party events.
type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal        *prometheus.CounterVec
	DroppedActionsTotal *prometheus.CounterVec
	BroadcastsTotal     prometheus.Counter
	ConnectedClients    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foolu_party_actions_total",
			Help: "Watch-party actions processed, by action name.",
		}, []string{"action"}),
		DroppedActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foolu_party_actions_dropped_total",
			Help: "Watch-party actions silently dropped, by reason.",
		}, []string{"reason"}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foolu_party_broadcasts_total",
			Help: "Events fanned out to party members.",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foolu_connected_clients",
			Help: "Currently connected websocket clients.",
		}),
	}

	reg.MustRegister(m.ActionsTotal, m.DroppedActionsTotal, m.BroadcastsTotal, m.ConnectedClients)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
