package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
	"github.com/avidal/oddsarb/internal/tracker"
	"github.com/avidal/oddsarb/pkg/healthprobe"
)

func TestOpportunitiesHandler_ReturnsTrackedRecords(t *testing.T) {
	tr := tracker.New(t.TempDir()+"/opps.json", time.Hour, zap.NewNop())
	tr.Ingest([]oddstypes.ArbOpportunity{{
		EventID:    "evt1",
		MarketType: oddstypes.MarketH2H,
		Strategy:   oddstypes.StrategyCrossBookArb,
		Edge:       0.03,
		Legs: []oddstypes.ArbLeg{
			{Bookmaker: "fanduel"},
			{Bookmaker: "draftkings"},
		},
		DetectedAt: time.Now(),
	}})

	h := NewOpportunitiesHandler(tr, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	w := httptest.NewRecorder()
	h.HandleOpportunities(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var records []oddstypes.OpportunityRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestOpportunitiesHandler_RejectsNonGet(t *testing.T) {
	tr := tracker.New(t.TempDir()+"/opps.json", time.Hour, zap.NewNop())
	h := NewOpportunitiesHandler(tr, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/opportunities", nil)
	w := httptest.NewRecorder()
	h.HandleOpportunities(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestServer_RoutesHealthAndReady(t *testing.T) {
	probe := healthprobe.New()
	probe.SetReady(true)

	srv := New(&Config{
		Port:   "0",
		Logger: zap.NewNop(),
		Probe:  probe,
	})

	if srv.server.Handler == nil {
		t.Fatal("expected a configured handler")
	}

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected 200 from %s, got %d", path, w.Code)
		}
	}
}
