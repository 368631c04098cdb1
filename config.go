package llcp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ControllerConfig holds everything that would otherwise be module-level
// mutable global state (default PHYs, default data lengths, pool sizes,
// the logger). It is owned by the embedding host and passed explicitly to
// NewController; nothing in this package reads package-level vars.
type ControllerConfig struct {
	// ProcCtxPoolSize is PROC_CTX_BUF_NUM, spec §4.C (typical 6-12).
	ProcCtxPoolSize int
	// NotifyPoolSize bounds the host-bound RX notification node pool,
	// spec §4.H.
	NotifyPoolSize int

	// DefaultPhyTx/DefaultPhyRx seed Connection.phyPrefTx/phyPrefRx.
	DefaultPhyTx PHY
	DefaultPhyRx PHY

	// DefaultTxOctets/DefaultTxTime seed Connection.maxTxOctets/maxTxTime
	// before any LENGTH procedure runs.
	DefaultTxOctets uint16
	DefaultTxTime   uint16

	// ProcedureReloadDefault is the default procedure-response timeout,
	// in connection events (spec §4.G step 7 / §7 "Procedure response
	// timeout"). It seeds Connection.ProcedureReload, from which each
	// newly active procedure's countdown starts.
	ProcedureReloadDefault uint16

	Log      *logrus.Entry
	Tracer   Tracer
	Registry prometheus.Registerer
}

// Option mutates a ControllerConfig during construction, generalizing the
// functional-options pattern the teacher applies to device construction
// (option_linux.go's linux.Option) to controller construction.
type Option func(*ControllerConfig)

// DefaultControllerConfig returns the configuration used when no Option
// overrides it: an 8-context pool, a 4-node notification pool, 1M PHY
// both ways, minimum data length, and a 40-second procedure-response
// timeout expressed as connection events at a 30ms interval (the original
// source's RADIO_CONN_EVENTS(40000000, interval_us) with a representative
// interval, since the exact interval is connection-specific; a completed
// Connection Update recomputes Connection.ProcedureReload from its new
// interval).
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		ProcCtxPoolSize:        8,
		NotifyPoolSize:         4,
		DefaultPhyTx:           Phy1M,
		DefaultPhyRx:           Phy1M,
		DefaultTxOctets:        MinDataOctets,
		DefaultTxTime:          328,
		ProcedureReloadDefault: connEventsFromMicros(40_000_000, 30_000),
		Log:                    logrus.NewEntry(logrus.StandardLogger()),
		Tracer:                 nil, // resolved to logrusTracer(Log) by NewController if unset
		Registry:               prometheus.DefaultRegisterer,
	}
}

// connEventsFromMicros mirrors the original source's RADIO_CONN_EVENTS
// macro: how many connection events of intervalUs each fit in durationUs,
// rounded up, at least 1.
func connEventsFromMicros(durationUs, intervalUs uint32) uint16 {
	if intervalUs == 0 {
		return 1
	}
	n := (durationUs + intervalUs - 1) / intervalUs
	if n == 0 {
		n = 1
	}
	if n > 0xFFFF {
		n = 0xFFFF
	}
	return uint16(n)
}

// WithProcCtxPoolSize overrides the procedure context pool capacity.
func WithProcCtxPoolSize(n int) Option {
	return func(c *ControllerConfig) { c.ProcCtxPoolSize = n }
}

// WithNotifyPoolSize overrides the notification node pool capacity.
func WithNotifyPoolSize(n int) Option {
	return func(c *ControllerConfig) { c.NotifyPoolSize = n }
}

// WithDefaultPHY overrides the preferred TX/RX PHYs new connections start
// with before any PHY Update procedure runs.
func WithDefaultPHY(tx, rx PHY) Option {
	return func(c *ControllerConfig) { c.DefaultPhyTx, c.DefaultPhyRx = tx, rx }
}

// WithDefaultDataLength overrides the default max TX octets/time.
func WithDefaultDataLength(octets, timeUs uint16) Option {
	return func(c *ControllerConfig) { c.DefaultTxOctets, c.DefaultTxTime = octets, timeUs }
}

// WithProcedureReload overrides the default procedure-response timeout,
// in connection events.
func WithProcedureReload(events uint16) Option {
	return func(c *ControllerConfig) { c.ProcedureReloadDefault = events }
}

// WithLogger overrides the logrus entry used by the default Tracer.
func WithLogger(log *logrus.Entry) Option {
	return func(c *ControllerConfig) { c.Log = log }
}

// WithTracer overrides the Tracer entirely, bypassing logrus.
func WithTracer(t Tracer) Option {
	return func(c *ControllerConfig) { c.Tracer = t }
}

// WithMetricsRegistry overrides the Prometheus registerer metrics are
// registered against. Pass a prometheus.NewRegistry() in tests to avoid
// colliding with the default global registry; pass nil to disable metrics
// registration entirely.
func WithMetricsRegistry(r prometheus.Registerer) Option {
	return func(c *ControllerConfig) { c.Registry = r }
}
