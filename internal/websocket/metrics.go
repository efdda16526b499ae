package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flex_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsStreams = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flex_ws_streams",
			Help: "Current number of open subscription streams by stream name.",
		},
		[]string{"stream"},
	)
	wsSnapshotsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flex_ws_snapshots_delivered_total",
			Help: "Total snapshots written to websocket clients.",
		},
		[]string{"stream"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsStreams, wsSnapshotsDelivered)
}

func incConnections(stream string) {
	wsConnections.Inc()
	wsStreams.WithLabelValues(stream).Inc()
}

func decConnections(stream string) {
	wsConnections.Dec()
	wsStreams.WithLabelValues(stream).Dec()
}

func addDelivered(stream string) {
	wsSnapshotsDelivered.WithLabelValues(stream).Inc()
}
