package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sessiongate/sessiongate/evt"
	"github.com/sessiongate/sessiongate/util"
)

// RegisterEventListeners registers all metric handlers by the event bus
func RegisterEventListeners() {
	registerApplicationEventListeners()
	registerSessionCacheEventListeners()
	registerSessionEventListeners()
}

func registerApplicationEventListeners() {
	v := versionNumberGauge()
	RegisterMetric(v)

	subscribe(evt.ApplicationStarted, func(version, buildTime string) {
		v.WithLabelValues(version, buildTime).Set(1)
	})
}

func versionNumberGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessiongate_build_info",
			Help: "Version number and build info",
		}, []string{"version", "build_time"},
	)
}

func registerSessionCacheEventListeners() {
	entryCount := cacheEntryCount()
	hitCount := cacheHitCount()
	missCount := cacheMissCount()
	reapedCount := cacheReapedCount()
	disposeFailedCount := cacheDisposeFailedCount()

	RegisterMetric(entryCount)
	RegisterMetric(hitCount)
	RegisterMetric(missCount)
	RegisterMetric(reapedCount)
	RegisterMetric(disposeFailedCount)

	subscribe(evt.SessionCacheChanged, func(cnt int) {
		entryCount.Set(float64(cnt))
	})

	subscribe(evt.SessionCacheHit, func() {
		hitCount.Inc()
	})

	subscribe(evt.SessionCacheMiss, func() {
		missCount.Inc()
	})

	subscribe(evt.SessionReaped, func(stolen bool) {
		reapedCount.WithLabelValues(strconv.FormatBool(stolen)).Inc()
	})

	subscribe(evt.SessionDisposeFailed, func(_ error) {
		disposeFailedCount.Inc()
	})
}

func cacheEntryCount() prometheus.Gauge {
	return prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessiongate_session_cache_entries",
			Help: "Number of idle sessions in the cache",
		},
	)
}

func cacheHitCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessiongate_session_cache_hits_total",
			Help: "Session cache hit counter",
		},
	)
}

func cacheMissCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessiongate_session_cache_misses_total",
			Help: "Session cache miss counter",
		},
	)
}

func cacheReapedCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessiongate_session_cache_reaped_total",
			Help: "Number of idle sessions closed by the reaper",
		}, []string{"stolen"},
	)
}

func cacheDisposeFailedCount() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessiongate_session_cache_dispose_failures_total",
			Help: "Number of evicted sessions which couldn't be closed",
		},
	)
}

func registerSessionEventListeners() {
	probeFailedCount := sessionProbeFailedCount()
	dialedCount := sessionDialedCount()
	dialFailedCount := sessionDialFailedCount()

	RegisterMetric(probeFailedCount)
	RegisterMetric(dialedCount)
	RegisterMetric(dialFailedCount)

	subscribe(evt.SessionProbeFailed, func() {
		probeFailedCount.Inc()
	})

	subscribe(evt.SessionDialed, func(tenant string) {
		dialedCount.WithLabelValues(tenant).Inc()
	})

	subscribe(evt.SessionDialFailed, func(tenant string) {
		dialFailedCount.WithLabelValues(tenant).Inc()
	})
}

func sessionProbeFailedCount() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_session_probe_failures_total",
		Help: "Number of pooled sessions which were dead on reuse",
	})
}

func sessionDialedCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_sessions_dialed_total",
		Help: "Number of created vendor sessions",
	}, []string{"tenant"})
}

func sessionDialFailedCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_session_dial_failures_total",
		Help: "Number of failed vendor login attempts",
	}, []string{"tenant"})
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError(fmt.Sprintf("can't subscribe topic '%s'", topic), evt.Bus().Subscribe(topic, fn))
}
