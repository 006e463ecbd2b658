package output

// CacheMetrics receives workflow state cache and fan-out events.
// Implementations must be safe for concurrent use.
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
	CacheEvicted(n int)
	SubscriberFailed()
}

// NopCacheMetrics ignores every event
type NopCacheMetrics struct{}

func (NopCacheMetrics) CacheHit()         {}
func (NopCacheMetrics) CacheMiss()        {}
func (NopCacheMetrics) CacheEvicted(int)  {}
func (NopCacheMetrics) SubscriberFailed() {}
