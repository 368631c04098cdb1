package llcp

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the Prometheus collectors the dispatcher updates. It is
// a pure observability side table: nothing in the FSMs or dispatcher
// branches on a metric value.
type metrics struct {
	proceduresStarted   *prometheus.CounterVec
	proceduresCompleted *prometheus.CounterVec
	proceduresAborted   *prometheus.CounterVec
	contextPoolInUse    prometheus.Gauge
	txControlContended  prometheus.Counter
	instantMissed       prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		proceduresStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llcp",
			Name:      "procedures_started_total",
			Help:      "LL control procedures started, by kind and initiator.",
		}, []string{"kind", "origin"}),
		proceduresCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llcp",
			Name:      "procedures_completed_total",
			Help:      "LL control procedures completed successfully, by kind.",
		}, []string{"kind"}),
		proceduresAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llcp",
			Name:      "procedures_aborted_total",
			Help:      "LL control procedures aborted, by kind and HCI error.",
		}, []string{"kind", "reason"}),
		contextPoolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "llcp",
			Name:      "context_pool_in_use",
			Help:      "Procedure contexts currently acquired from the pool.",
		}),
		txControlContended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llcp",
			Name:      "tx_control_slot_contended_total",
			Help:      "EnqueueControl calls that found the control slot occupied.",
		}),
		instantMissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llcp",
			Name:      "instant_missed_total",
			Help:      "Instant-based procedures whose instant had already elapsed by the first check.",
		}),
	}
	if reg == nil {
		return m
	}
	for _, c := range []prometheus.Collector{
		m.proceduresStarted, m.proceduresCompleted, m.proceduresAborted,
		m.contextPoolInUse, m.txControlContended, m.instantMissed,
	} {
		// A duplicate registration (e.g. two Controllers sharing the
		// default registry in a test binary) must not panic the engine.
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
		}
	}
	return m
}
