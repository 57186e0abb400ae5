package scandriver

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/arbengine"
	"github.com/avidal/oddsarb/internal/creditguard"
	"github.com/avidal/oddsarb/internal/oddsource"
	"github.com/avidal/oddsarb/internal/oddstypes"
	"github.com/avidal/oddsarb/internal/tracker"
)

func newTestTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opportunities.json")
	return tracker.New(path, 300*time.Second, zap.NewNop())
}

func TestRunOnce_HappyPathEmitsNovelArb(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Requests-Remaining", "499")
		w.Header().Set("X-Requests-Used", "1")
		w.Write([]byte(`[{
			"id": "evt1",
			"sport_key": "americanfootball_nfl",
			"commence_time": "2026-09-10T17:00:00Z",
			"home_team": "Eagles",
			"away_team": "Cowboys",
			"bookmakers": [
				{"key":"fanduel","last_update":"2026-09-10T12:00:00Z","markets":[{"key":"h2h","outcomes":[
					{"name":"Cowboys","price":130},{"name":"Eagles","price":-150}]}]},
				{"key":"draftkings","last_update":"2026-09-10T12:00:00Z","markets":[{"key":"h2h","outcomes":[
					{"name":"Cowboys","price":110},{"name":"Eagles","price":-120}]}]}
			]
		}]`))
	}))
	defer srv.Close()

	oddsClient := oddsource.New(srv.URL, "test-key", zap.NewNop(), nil)
	engine := arbengine.New(arbengine.Config{MinEdge: 0, MaxArbTotal: 100, MaxSingleBet: 50}, zap.NewNop())
	trk := newTestTracker(t)
	guard := creditguard.New(10, zap.NewNop())

	d := New(
		Config{Sports: []string{"americanfootball_nfl"}, MaxConcurrentFetches: 2},
		oddsClient, nil, engine, nil, trk, nil, guard, zap.NewNop(), nil,
	)

	novel, err := d.RunOnce(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(novel) != 1 {
		t.Fatalf("expected 1 novel opportunity, got %d", len(novel))
	}
	if novel[0].Opportunity.Strategy != oddstypes.StrategyCrossBookArb {
		t.Fatalf("expected cross_book_arb, got %s", novel[0].Opportunity.Strategy)
	}

	// Re-running immediately within the TTL window must dedup.
	novel, err = d.RunOnce(t.Context())
	if err != nil {
		t.Fatalf("unexpected error on second cycle: %v", err)
	}
	if len(novel) != 0 {
		t.Fatalf("expected dedup on second cycle, got %d novel", len(novel))
	}
}

func TestRunOnce_AuthErrorAbortsCycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	oddsClient := oddsource.New(srv.URL, "bad-key", zap.NewNop(), nil)
	engine := arbengine.New(arbengine.Config{MaxArbTotal: 100, MaxSingleBet: 50}, zap.NewNop())
	trk := newTestTracker(t)
	guard := creditguard.New(10, zap.NewNop())

	d := New(
		Config{Sports: []string{"americanfootball_nfl"}, MaxConcurrentFetches: 1},
		oddsClient, nil, engine, nil, trk, nil, guard, zap.NewNop(), nil,
	)

	_, err := d.RunOnce(t.Context())
	if err == nil {
		t.Fatal("expected a fatal cycle error")
	}
	if !oddstypes.IsKind(err, oddstypes.KindAuthError) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestRunOnce_OneSportFailureDoesNotFailCycle(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	// One single-sport cycle against the failing server (the ok server is
	// not wired in): this asserts the per-sport failure classification
	// (UpstreamError) never returns a cycle error, the mechanism the real
	// multi-sport fetch relies on.
	badClient := oddsource.New(bad.URL, "k", zap.NewNop(), nil)
	engine := arbengine.New(arbengine.Config{MaxArbTotal: 100, MaxSingleBet: 50}, zap.NewNop())
	trk := newTestTracker(t)
	guard := creditguard.New(10, zap.NewNop())

	d := New(
		Config{Sports: []string{"americanfootball_nfl"}, MaxConcurrentFetches: 1},
		badClient, nil, engine, nil, trk, nil, guard, zap.NewNop(), nil,
	)

	novel, err := d.RunOnce(t.Context())
	if err != nil {
		t.Fatalf("expected per-sport UpstreamError to be absorbed, got cycle error: %v", err)
	}
	if len(novel) != 0 {
		t.Fatalf("expected no opportunities, got %d", len(novel))
	}
}

func TestRun_OneShotReturnsAfterSingleCycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	oddsClient := oddsource.New(srv.URL, "k", zap.NewNop(), nil)
	engine := arbengine.New(arbengine.Config{MaxArbTotal: 100, MaxSingleBet: 50}, zap.NewNop())
	trk := newTestTracker(t)
	guard := creditguard.New(10, zap.NewNop())

	cycles := 0
	d := New(
		Config{Sports: []string{"americanfootball_nfl"}, LoopMode: false, MaxConcurrentFetches: 1},
		oddsClient, nil, engine, nil, trk, nil, guard, zap.NewNop(),
		func(novel []oddstypes.OpportunityRecord) { cycles++ },
	)

	if err := d.Run(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cycles != 1 {
		t.Fatalf("expected exactly 1 cycle in one-shot mode, got %d", cycles)
	}
}
