// Package tracker gives detected opportunities a stable identity across
// scan cycles, dedups repeat sightings within a TTL window, carries the
// notified bit, and persists the record set to a JSON state file.
package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// DefaultTTL is the dedup window for repeated opportunity sightings.
const DefaultTTL = 300 * time.Second

// Tracker holds the live OpportunityRecord set and serializes mutations
// behind a single-writer lock.
type Tracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	path    string
	records map[string]*oddstypes.OpportunityRecord
	logger  *zap.Logger
	now     func() time.Time
}

// New constructs an empty Tracker bound to path with the given TTL. Use
// Load to restore persisted state instead, when one exists.
func New(path string, ttl time.Duration, logger *zap.Logger) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		ttl:     ttl,
		path:    path,
		records: make(map[string]*oddstypes.OpportunityRecord),
		logger:  logger,
		now:     time.Now,
	}
}

// Load restores a Tracker's records from path, or returns a fresh Tracker
// with a log notice if the file is missing or unparseable: unknown keys
// ignored, missing file yields fresh
// state.
func Load(path string, ttl time.Duration, logger *zap.Logger) *Tracker {
	t := New(path, ttl, logger)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info("no opportunity state found, initializing fresh", zap.String("path", path))
		return t
	}

	var records []oddstypes.OpportunityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("failed to load opportunity state, starting fresh", zap.Error(err))
		return t
	}

	for i := range records {
		rec := records[i]
		t.records[rec.ID] = &rec
	}
	logger.Info("opportunity state loaded", zap.String("path", path), zap.Int("record_count", len(records)))
	return t
}

// Save persists the current record set atomically: write to a sibling
// temp file, then rename over the target.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save()
}

func (t *Tracker) save() error {
	records := make([]oddstypes.OpportunityRecord, 0, len(t.records))
	for _, rec := range t.records {
		records = append(records, *rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return oddstypes.NewPersistenceError("marshal opportunity state", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oddstypes.NewPersistenceError("create opportunity state directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".opportunities-*.tmp")
	if err != nil {
		return oddstypes.NewPersistenceError("create temp opportunity file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oddstypes.NewPersistenceError("write temp opportunity file", err)
	}
	if err := tmp.Close(); err != nil {
		return oddstypes.NewPersistenceError("close temp opportunity file", err)
	}

	if err := os.Rename(tmpPath, t.path); err != nil {
		return oddstypes.NewPersistenceError("rename temp opportunity file", err)
	}

	TrackerSaveTotal.Inc()
	TrackedRecordsGauge.Set(float64(len(records)))
	return nil
}

// computeID derives the stable identity: event id,
// market-type tag, strategy, and the sorted bookmaker keys of its legs.
// Edge, stake, odds, and timestamps never participate.
func computeID(opp oddstypes.ArbOpportunity) string {
	keys := make([]string, 0, len(opp.Legs))
	for _, leg := range opp.Legs {
		keys = append(keys, leg.Bookmaker)
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", opp.EventID, opp.MarketType, opp.Strategy, strings.Join(keys, ","))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:12]
}

// Ingest records every candidate opportunity and returns only the novel
// ones: first sightings, and re-emergences after the TTL window with a
// fresh notified=false bit. Dedup hits within the TTL update last_seen but
// are not returned.
func (t *Tracker) Ingest(opps []oddstypes.ArbOpportunity) []oddstypes.OpportunityRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var novel []oddstypes.OpportunityRecord

	for _, opp := range opps {
		id := computeID(opp)
		existing, ok := t.records[id]
		if !ok {
			rec := &oddstypes.OpportunityRecord{
				ID:          id,
				Opportunity: opp,
				FirstSeen:   now,
				LastSeen:    now,
				Notified:    false,
				ExpiresAt:   opp.ExpiresAt,
			}
			t.records[id] = rec
			novel = append(novel, *rec)
			continue
		}

		age := now.Sub(existing.LastSeen)
		existing.LastSeen = now
		existing.Opportunity = opp
		existing.ExpiresAt = opp.ExpiresAt

		if age < t.ttl {
			continue
		}

		existing.Notified = false
		novel = append(novel, *existing)
	}

	if err := t.save(); err != nil {
		t.logger.Warn("failed to persist opportunity state", zap.Error(err))
	}
	NovelOpportunitiesTotal.Add(float64(len(novel)))

	return novel
}

// MarkNotified sets the notified bit for id, if known.
func (t *Tracker) MarkNotified(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[id]; ok {
		rec.Notified = true
		if err := t.save(); err != nil {
			t.logger.Warn("failed to persist opportunity state", zap.Error(err))
		}
	}
}

// GetUnnotified returns every record with notified=false.
func (t *Tracker) GetUnnotified() []oddstypes.OpportunityRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []oddstypes.OpportunityRecord
	for _, rec := range t.records {
		if !rec.Notified {
			out = append(out, *rec)
		}
	}
	sortByEdgeDescending(out)
	return out
}

// GetAll returns every record sorted by edge descending.
func (t *Tracker) GetAll() []oddstypes.OpportunityRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]oddstypes.OpportunityRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	sortByEdgeDescending(out)
	return out
}

func sortByEdgeDescending(recs []oddstypes.OpportunityRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Opportunity.Edge > recs[j].Opportunity.Edge
	})
}
