package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/YoshitsuguKoike/phasetrack/internal/application/port/output"
)

// PrometheusCacheMetrics implements output.CacheMetrics with Prometheus counters
type PrometheusCacheMetrics struct {
	hits              prometheus.Counter
	misses            prometheus.Counter
	evictions         prometheus.Counter
	subscriberFailure prometheus.Counter
}

var _ output.CacheMetrics = (*PrometheusCacheMetrics)(nil)

// NewPrometheusCacheMetrics registers the workflow state counters on reg
func NewPrometheusCacheMetrics(reg prometheus.Registerer) *PrometheusCacheMetrics {
	factory := promauto.With(reg)
	return &PrometheusCacheMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phasetrack",
			Subsystem: "workflow_state",
			Name:      "cache_hits_total",
			Help:      "Workflow state lookups served from the cache",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phasetrack",
			Subsystem: "workflow_state",
			Name:      "cache_misses_total",
			Help:      "Workflow state lookups that required recomputation",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phasetrack",
			Subsystem: "workflow_state",
			Name:      "cache_evictions_total",
			Help:      "Cached workflow states dropped by invalidation or supersession",
		}),
		subscriberFailure: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "phasetrack",
			Subsystem: "change_notifier",
			Name:      "listener_failures_total",
			Help:      "Change listeners that panicked during delivery",
		}),
	}
}

func (m *PrometheusCacheMetrics) CacheHit()  { m.hits.Inc() }
func (m *PrometheusCacheMetrics) CacheMiss() { m.misses.Inc() }

func (m *PrometheusCacheMetrics) CacheEvicted(n int) {
	if n > 0 {
		m.evictions.Add(float64(n))
	}
}

func (m *PrometheusCacheMetrics) SubscriberFailed() { m.subscriberFailure.Inc() }
