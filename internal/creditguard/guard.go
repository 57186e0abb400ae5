// Package creditguard watches the odds source's vendor-reported
// remaining request credits and aborts the remainder of a scan cycle's
// fetches once they drop below a configured threshold. Credits only ever
// fall within a cycle, so a tripped guard stays tripped until Reset.
package creditguard

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// DefaultThreshold is the remaining-credit floor below which the guard
// trips.
const DefaultThreshold = 10

// Guard tracks the most recently observed credit balance and reports
// whether further fetches should proceed.
type Guard struct {
	threshold int
	remaining atomic.Int64
	tripped   atomic.Bool
	logger    *zap.Logger
}

// New returns a Guard with the given threshold (DefaultThreshold if <= 0).
func New(threshold int, logger *zap.Logger) *Guard {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	g := &Guard{threshold: threshold, logger: logger}
	g.remaining.Store(-1)
	CreditsRemaining.Set(-1)
	return g
}

// Observe records a freshly fetched credit count and trips the guard once it
// has fallen below the threshold. Observe is safe to call from multiple
// fetch goroutines concurrently.
func (g *Guard) Observe(remaining int) {
	g.remaining.Store(int64(remaining))
	CreditsRemaining.Set(float64(remaining))

	if remaining < 0 {
		return
	}

	if remaining < g.threshold {
		if !g.tripped.Swap(true) {
			GuardTrippedTotal.Inc()
			g.logger.Warn("credit guard tripped, aborting remaining fetches this cycle",
				zap.Int("remaining", remaining), zap.Int("threshold", g.threshold))
		}
	}
}

// Allow reports whether another fetch should be attempted.
func (g *Guard) Allow() bool {
	return !g.tripped.Load()
}

// Reset clears the tripped state for the next scan cycle.
func (g *Guard) Reset() {
	g.tripped.Store(false)
}

// CreditExhaustedErr returns the DomainError a ScanDriver should surface
// when the guard is tripped and no fetches remain to even attempt.
func CreditExhaustedErr(remaining int) error {
	return oddstypes.NewCreditExhausted(
		fmt.Sprintf("vendor request credits exhausted for this cycle (remaining=%d)", remaining),
	)
}
