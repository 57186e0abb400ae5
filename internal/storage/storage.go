// Package storage is the supplemental analytics sink: an independent
// historical log of every detected opportunity, separate from the
// tracker's own dedup state file.
package storage

import (
	"context"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// Storage records every opportunity the ArbEngine or CrossPlatformMatcher
// detects, independent of tracker dedup.
type Storage interface {
	StoreOpportunity(ctx context.Context, opp oddstypes.ArbOpportunity) error
	Close() error
}
