// Package metrics exposes the task gauges in Prometheus exposition format.
// Gauge values are pulled from the store at scrape time, so the endpoint
// never holds state of its own.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TaskCounter is the slice of the store the gauges need.
type TaskCounter interface {
	CountAll(ctx context.Context) (int, error)
	CountCompleted(ctx context.Context) (int, error)
}

func gaugeValue(count func(ctx context.Context) (int, error)) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	n, err := count(ctx)
	if err != nil {
		return 0
	}
	return float64(n)
}

// Handler builds the /metrics handler with tasks_total and
// tasks_completed_total registered on a private registry.
func Handler(counter TaskCounter) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tasks_total",
		Help: "Total number of tasks.",
	}, func() float64 {
		return gaugeValue(counter.CountAll)
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tasks_completed_total",
		Help: "Number of completed tasks.",
	}, func() float64 {
		return gaugeValue(counter.CountCompleted)
	}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
