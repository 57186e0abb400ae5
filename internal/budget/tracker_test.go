package budget

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

func TestRecordBet_RejectsOverAvailableBankroll(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	_, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 10000.0)
	if err == nil {
		t.Fatal("expected an error for a stake exceeding available bankroll")
	}
	if !oddstypes.IsKind(err, oddstypes.KindBudgetViolation) {
		t.Fatalf("expected BudgetViolation, got %v", err)
	}
}

func TestRecordBet_ClampsToMaxSingle(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	bet, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 75.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bet.Stake != 50.0 {
		t.Fatalf("expected stake clamped to 50.0, got %f", bet.Stake)
	}
}

func TestRecordWin_ComputesPayoutFromAmericanOdds(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	bet, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 30.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.RecordWin(bet.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := tr.State()
	if state.BetsSettled != 1 {
		t.Fatalf("expected 1 settled bet, got %d", state.BetsSettled)
	}
	// -150 odds: payout = 30 + 30*100/150 = 50.0, pnl = 20.0
	if state.BettingPnL != 20.0 {
		t.Fatalf("expected pnl 20.0, got %f", state.BettingPnL)
	}
}

func TestRecordLoss_DeductsStakeFromPnL(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	bet, err := tr.RecordBet("evt1", "Ravens", "draftkings", 130, 20.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.RecordLoss(bet.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := tr.State()
	if state.BettingPnL != -20.0 {
		t.Fatalf("expected pnl -20.0, got %f", state.BettingPnL)
	}
}

func TestReleaseFromReserve_GatedOnSettledBetsAndPositivePnL(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	ok, err := tr.ReleaseFromReserve(100.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected release to be refused before 10 settled bets with positive P&L")
	}
}

func TestPlaceBet_IsNotImplemented(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	err := tr.PlaceBet("evt1", "Chiefs", "fanduel", -150, 10.0)
	if !oddstypes.IsKind(err, oddstypes.KindNotImplemented) {
		t.Fatalf("expected NotImplemented, got %v", err)
	}
}

func TestRecordWin_SecondSettleIsRejected(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	bet, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 30.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.RecordWin(bet.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.RecordLoss(bet.ID); err == nil {
		t.Fatal("expected a settled bet to reject a second settlement")
	}
	state := tr.State()
	if state.BetsSettled != 1 {
		t.Fatalf("expected bets_settled to stay 1, got %d", state.BetsSettled)
	}
}

func TestRecordVoid_ReturnsStakeWithZeroPnL(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "budget.json"), 50.0, zap.NewNop())

	bet, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 30.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.RecordVoid(bet.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := tr.State()
	if state.BettingPnL != 0 {
		t.Fatalf("expected zero pnl after void, got %f", state.BettingPnL)
	}
	if state.Bets[0].Payout != 30.0 {
		t.Fatalf("expected voided stake returned as payout, got %f", state.Bets[0].Payout)
	}
	if state.BetsSettled != 1 {
		t.Fatalf("expected 1 settled bet, got %d", state.BetsSettled)
	}
}

func TestSaveLoad_RoundTripsAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budget.json")
	tr := New(path, 50.0, zap.NewNop())

	if _, err := tr.RecordBet("evt1", "Chiefs", "fanduel", -150, 10.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := Load(path, 50.0, zap.NewNop())
	state := reloaded.State()
	if state.BetsPlaced != 1 {
		t.Fatalf("expected persisted state to round-trip, got %+v", state)
	}
}

func TestLoad_MissingFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	tr := Load(path, 50.0, zap.NewNop())
	state := tr.State()
	if state.APIBudget != DefaultAPIBudget || state.BettingBankroll != DefaultBettingBankroll {
		t.Fatalf("expected default allocations for a missing file, got %+v", state)
	}
}
