// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric label names.
//
const (
	CircuitLabel = "circuit"
	BackendLabel = "backend"
)

var (
	stepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vollgas_steps_total",
			Help: "Number of simulated steps",
		},
		[]string{CircuitLabel, BackendLabel},
	)

	updateCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vollgas_update_calls_total",
			Help: "Number of update function calls",
		},
		[]string{CircuitLabel},
	)

	backendFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vollgas_backend_fallbacks_total",
			Help: "Number of circuits that could not use the bytecode backend",
		},
	)

	arenaBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vollgas_arena_bytes",
			Help: "Size of the state arena of a circuit",
		},
		[]string{CircuitLabel},
	)
)

// RegisterMetrics registers the simulator metrics with r.
//
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{stepsTotal, updateCallsTotal, backendFallbacksTotal, arenaBytes} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
