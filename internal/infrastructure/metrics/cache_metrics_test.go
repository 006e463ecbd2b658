package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusCacheMetrics(reg)

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.CacheEvicted(3)
	m.CacheEvicted(0)
	m.SubscriberFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.evictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subscriberFailure))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNewPrometheusCacheMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusCacheMetrics(reg)

	assert.Panics(t, func() { NewPrometheusCacheMetrics(reg) })
}
