package oddsource

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// sportsCacheKey is the single key under which the sports list lives.
const sportsCacheKey = "sports"

// sportsCacheTTL bounds how long ListSports serves a cached response
// before re-fetching: the active-sports list changes at most a few times
// a day, so a short cache meaningfully cuts vendor credit spend on
// loop-mode runs without risking stale data within one run's lifetime.
const sportsCacheTTL = 10 * time.Minute

// SportsCache holds the one cached sports-list response between scan
// cycles. It is sized for that single entry rather than exposed as a
// general-purpose cache: the odds boundary is its only consumer and the
// sports list its only content.
type SportsCache struct {
	cache *ristretto.Cache
}

// NewSportsCache constructs a SportsCache.
func NewSportsCache() (*SportsCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     8,
		BufferItems: 64,
		// Count only the explicit cost of 1; ristretto's per-item overhead
		// would otherwise push the entry past MaxCost and it would never be stored.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &SportsCache{cache: c}, nil
}

func (s *SportsCache) get() ([]Sport, bool) {
	v, ok := s.cache.Get(sportsCacheKey)
	if !ok {
		SportsCacheMissesTotal.Inc()
		return nil, false
	}
	sports, ok := v.([]Sport)
	if !ok {
		return nil, false
	}
	SportsCacheHitsTotal.Inc()
	return sports, true
}

func (s *SportsCache) put(sports []Sport) {
	s.cache.SetWithTTL(sportsCacheKey, sports, 1, sportsCacheTTL)
}

// Wait blocks until pending writes have been applied. Useful in tests
// that read immediately after a write.
func (s *SportsCache) Wait() {
	s.cache.Wait()
}

// Close releases the cache's resources.
func (s *SportsCache) Close() {
	s.cache.Close()
}
