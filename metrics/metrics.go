package metrics

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sessiongate/sessiongate/config"
)

//nolint:gochecknoglobals
var (
	reg       = prometheus.NewRegistry()
	startOnce sync.Once
)

// RegisterMetric registers prometheus collector
func RegisterMetric(c prometheus.Collector) {
	_ = reg.Register(c)
}

// Start starts prometheus endpoint
func Start(router chi.Router, cfg config.MetricsConfig) {
	if !cfg.Enable {
		return
	}

	startOnce.Do(func() {
		RegisterMetric(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		RegisterMetric(collectors.NewGoCollector())

		RegisterEventListeners()
	})

	router.Handle(cfg.Path, promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}
