package crossplatform

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

func TestMatch_DetectsDivergence(t *testing.T) {
	closeTime := time.Now().Add(2 * time.Hour)

	game := oddstypes.ContractGame{
		EventTicker:  "NBA-CHI-BOS",
		SeriesTicker: "NBA",
		HomeShort:    "chicago",
		HomeFull:     "Chicago Bulls",
		AwayShort:    "celtics",
		AwayFull:     "Boston Celtics",
		Home:         oddstypes.ContractMarket{Ticker: "CHI", YesBid: 30, YesAsk: 34, Volume24h: 500},
		Away:         oddstypes.ContractMarket{Ticker: "BOS", YesBid: 64, YesAsk: 68, Volume24h: 500},
		CloseTime:    closeTime,
	}

	event := oddstypes.Event{
		ID:           "EVT1",
		Sport:        "basketball_nba",
		CommenceTime: closeTime.Add(-30 * time.Minute),
		HomeTeam:     "Chicago Bulls",
		AwayTeam:     "Boston Celtics",
		Bookmakers: []oddstypes.PerBookmakerQuote{
			{
				Bookmaker:  "fanduel",
				LastUpdate: time.Now(),
				Markets: []oddstypes.MarketQuote{{
					MarketType: oddstypes.MarketH2H,
					Outcomes: []oddstypes.Outcome{
						{Name: "Chicago Bulls", Price: 150},
						{Name: "Boston Celtics", Price: -180},
					},
				}},
			},
		},
	}

	m := New(0.01, 50.0, "contract-platform-key", zap.NewNop())
	opps := m.Match([]oddstypes.ContractGame{game}, []oddstypes.Event{event})

	if len(opps) == 0 {
		t.Fatal("expected at least one cross_platform_value opportunity")
	}
	for _, o := range opps {
		if o.Strategy != oddstypes.StrategyCrossPlatformValue {
			t.Errorf("unexpected strategy %s", o.Strategy)
		}
		if len(o.Legs) != 1 {
			t.Errorf("expected exactly one leg, got %d", len(o.Legs))
		}
	}
}

func TestMatch_SkipsIlliquidSide(t *testing.T) {
	game := oddstypes.ContractGame{
		EventTicker:  "NBA-CHI-BOS",
		SeriesTicker: "NBA",
		HomeShort:    "chicago",
		AwayShort:    "celtics",
		Home:         oddstypes.ContractMarket{Ticker: "CHI", YesBid: 30, YesAsk: 34, Volume24h: 1},
		Away:         oddstypes.ContractMarket{Ticker: "BOS", YesBid: 64, YesAsk: 68, Volume24h: 1},
		CloseTime:    time.Now().Add(2 * time.Hour),
	}

	m := New(0.01, 50.0, "contract-platform-key", zap.NewNop())
	opps := m.Match([]oddstypes.ContractGame{game}, nil)
	if len(opps) != 0 {
		t.Fatalf("expected illiquid sides to be skipped, got %d opportunities", len(opps))
	}
}

func TestMatch_SkipsOutsideSameGameWindow(t *testing.T) {
	closeTime := time.Now().Add(2 * time.Hour)
	game := oddstypes.ContractGame{
		EventTicker:  "NBA-CHI-BOS",
		SeriesTicker: "NBA",
		HomeShort:    "chicago",
		AwayShort:    "celtics",
		Home:         oddstypes.ContractMarket{Ticker: "CHI", YesBid: 30, YesAsk: 34, Volume24h: 500},
		Away:         oddstypes.ContractMarket{Ticker: "BOS", YesBid: 64, YesAsk: 68, Volume24h: 500},
		CloseTime:    closeTime,
	}

	event := oddstypes.Event{
		ID:           "EVT1",
		CommenceTime: closeTime.Add(-24 * time.Hour), // outside the 12h gate
		HomeTeam:     "Chicago Bulls",
		AwayTeam:     "Boston Celtics",
		Bookmakers: []oddstypes.PerBookmakerQuote{
			{Bookmaker: "fanduel", Markets: []oddstypes.MarketQuote{{
				MarketType: oddstypes.MarketH2H,
				Outcomes: []oddstypes.Outcome{
					{Name: "Chicago Bulls", Price: 150},
					{Name: "Boston Celtics", Price: -180},
				},
			}}},
		},
	}

	m := New(0.01, 50.0, "contract-platform-key", zap.NewNop())
	opps := m.Match([]oddstypes.ContractGame{game}, []oddstypes.Event{event})
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities outside the 12h same-game window, got %d", len(opps))
	}
}

func TestResolveTeam_SeriesOverrideWinsOverGeneralLookup(t *testing.T) {
	nba, ok := ResolveTeam("NBA", "chicago")
	if !ok || nba != "Chicago Bulls" {
		t.Errorf("expected NBA chicago -> Chicago Bulls, got %q ok=%v", nba, ok)
	}
	nhl, ok := ResolveTeam("NHL", "chicago")
	if !ok || nhl != "Chicago Blackhawks" {
		t.Errorf("expected NHL chicago -> Chicago Blackhawks, got %q ok=%v", nhl, ok)
	}
}
