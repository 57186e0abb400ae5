package contractsource

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestListGames_PairsHomeAndAway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markets": [
			{
				"ticker": "KXNFLGAME-25SEP10KCBAL-KC",
				"event_ticker": "KXNFLGAME-25SEP10KCBAL",
				"series_ticker": "KXNFLGAME",
				"title": "Baltimore Ravens at Kansas City Chiefs Winner?",
				"yes_sub_title": "Kansas City Chiefs",
				"yes_bid": 62,
				"yes_ask": 65,
				"volume_24h": 1200,
				"close_time": "2026-09-10T17:00:00Z"
			},
			{
				"ticker": "KXNFLGAME-25SEP10KCBAL-BAL",
				"event_ticker": "KXNFLGAME-25SEP10KCBAL",
				"series_ticker": "KXNFLGAME",
				"title": "Baltimore Ravens at Kansas City Chiefs Winner?",
				"yes_sub_title": "Baltimore Ravens",
				"yes_bid": 33,
				"yes_ask": 36,
				"volume_24h": 900,
				"close_time": "2026-09-10T17:00:00Z"
			}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", zap.NewNop())
	games, err := c.ListGames(t.Context(), "KXNFLGAME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 paired game, got %d", len(games))
	}
	g := games[0]
	if g.HomeFull != "Kansas City Chiefs" || g.AwayFull != "Baltimore Ravens" {
		t.Fatalf("unexpected pairing: %+v", g)
	}
	if g.HomeShort != "Chiefs" || g.AwayShort != "Ravens" {
		t.Fatalf("unexpected short names: %+v", g)
	}
	if g.Home.YesBid != 62 || g.Away.YesBid != 33 {
		t.Fatalf("unexpected bid wiring: %+v", g)
	}
}

func TestListGames_SkipsUnpairedEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markets": [
			{
				"ticker": "X-1",
				"event_ticker": "X",
				"series_ticker": "SERIES",
				"title": "Team A at Team B Winner?",
				"yes_sub_title": "Team B",
				"yes_bid": 50,
				"yes_ask": 52,
				"volume_24h": 10,
				"close_time": "2026-09-10T17:00:00Z"
			}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", zap.NewNop())
	games, err := c.ListGames(t.Context(), "SERIES")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("expected no games for an unpaired event, got %d", len(games))
	}
}

func TestSplitTitle(t *testing.T) {
	away, home, ok := splitTitle("Baltimore Ravens at Kansas City Chiefs Winner?")
	if !ok || away != "Baltimore Ravens" || home != "Kansas City Chiefs" {
		t.Fatalf("unexpected split: away=%q home=%q ok=%v", away, home, ok)
	}

	if _, _, ok := splitTitle("not a title"); ok {
		t.Fatal("expected split to fail on malformed title")
	}
}
