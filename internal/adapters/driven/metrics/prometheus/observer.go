// Package prometheus exports call and stage measurements as Prometheus
// metrics.
package prometheus

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.CallObserver = (*Observer)(nil)

// Observer records collaborator calls and stage timings.
type Observer struct {
	registry *prometheus.Registry

	calls     *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	callTime  *prometheus.HistogramVec
	stageTime *prometheus.HistogramVec
}

// NewObserver creates an observer with its own registry.
func NewObserver() *Observer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Observer{
		registry: reg,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pathscout_source_calls_total",
			Help: "Collaborator calls by source and outcome, after retries",
		}, []string{"source", "result"}),
		attempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathscout_source_call_attempts",
			Help:    "Attempts needed per collaborator call",
			Buckets: []float64{1, 2, 3, 5, 8},
		}, []string{"source"}),
		callTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathscout_source_call_duration_seconds",
			Help:    "Collaborator call duration including retries",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"source"}),
		stageTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathscout_stage_duration_seconds",
			Help:    "Pipeline stage duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"stage"}),
	}
}

// ObserveCall records one logical call.
func (o *Observer) ObserveCall(source string, attempts int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "unavailable"
	}
	o.calls.WithLabelValues(source, result).Inc()
	o.attempts.WithLabelValues(source).Observe(float64(attempts))
	o.callTime.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveStage records one completed stage.
func (o *Observer) ObserveStage(stage domain.Stage, duration time.Duration) {
	o.stageTime.WithLabelValues(string(stage)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the metrics.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Serve exposes /metrics on addr until ctx is done.
func (o *Observer) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
