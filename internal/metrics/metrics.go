// Package metrics exposes Prometheus collectors for the signal engine.
//
// Served by the HTTP server at /metrics in Prometheus text exposition
// format:
//   - tradehook_signals_total{outcome}     - processed signals by outcome
//   - tradehook_trades_total{action,status} - sell/buy legs by result
//   - tradehook_signal_duration_seconds    - end-to-end processing time
//   - tradehook_strategies                 - live strategy count (gauge)
//   - tradehook_busy_rejections_total      - requests rejected by the per-strategy lock
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradehook_signals_total",
			Help: "Signals processed, by outcome",
		},
		[]string{"outcome"}, // executed|suppressed_by_cooldown|failed
	)

	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradehook_trades_total",
			Help: "Trade legs executed, by action and status",
		},
		[]string{"action", "status"},
	)

	signalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradehook_signal_duration_seconds",
			Help:    "Time spent processing one signal end to end",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	strategies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradehook_strategies",
			Help: "Currently registered strategies",
		},
	)

	busyRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradehook_busy_rejections_total",
			Help: "Signals rejected because the strategy was already processing one",
		},
	)
)

func init() {
	prometheus.MustRegister(signalsTotal, tradesTotal, signalDuration, strategies, busyRejections)
}

func IncSignal(outcome string)              { signalsTotal.WithLabelValues(outcome).Inc() }
func IncTrade(action, status string)        { tradesTotal.WithLabelValues(action, status).Inc() }
func ObserveSignalDuration(d time.Duration) { signalDuration.Observe(d.Seconds()) }
func IncStrategies()                        { strategies.Inc() }
func DecStrategies()                        { strategies.Dec() }
func IncBusyRejection()                     { busyRejections.Inc() }
