// Package budget implements the BudgetTracker: the three-bucket
// allocation (API budget, betting bankroll, reserve) and the bet
// lifecycle that mutates it. Persistence uses the atomic
// write-temp-then-rename pattern used throughout this module's
// persisted state.
package budget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// Default allocations, matching the project's three-bucket split.
const (
	DefaultAPIBudget       = 60.0
	DefaultBettingBankroll = 200.0
	DefaultReserve         = 740.0

	minBet            = 2.0
	maxReserveRelease = 100.0
)

// Tracker manages and persists BudgetState, serializing every mutation
// behind a single lock.
type Tracker struct {
	mu        sync.Mutex
	path      string
	state     oddstypes.BudgetState
	maxSingle float64
	logger    *zap.Logger
	now       func() time.Time
}

// New returns a Tracker seeded with the default allocations. Use Load to
// restore persisted state instead, when one exists.
func New(path string, maxSingleBet float64, logger *zap.Logger) *Tracker {
	now := time.Now().UTC()
	return &Tracker{
		path:      path,
		maxSingle: maxSingleBet,
		logger:    logger,
		now:       time.Now,
		state: oddstypes.BudgetState{
			APIBudget:       DefaultAPIBudget,
			BettingBankroll: DefaultBettingBankroll,
			Reserve:         DefaultReserve,
			CreatedAt:       now,
			LastUpdated:     now,
		},
	}
}

// Load restores persisted state from path, or returns a fresh Tracker with
// a log notice if the file is missing or unparseable, matching the state
// file contract.
func Load(path string, maxSingleBet float64, logger *zap.Logger) *Tracker {
	t := New(path, maxSingleBet, logger)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info("no budget state found, initializing fresh", zap.String("path", path))
		return t
	}

	var state oddstypes.BudgetState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("failed to load budget state, starting fresh", zap.Error(err))
		return t
	}

	t.state = state
	logger.Info("budget state loaded", zap.String("path", path))
	return t
}

// State returns a copy of the current budget state.
func (t *Tracker) State() oddstypes.BudgetState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// save persists the current state atomically: write to a sibling temp
// file, then rename over the target. Caller must hold t.mu.
func (t *Tracker) save() error {
	t.state.LastUpdated = t.now()

	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return oddstypes.NewPersistenceError("marshal budget state", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oddstypes.NewPersistenceError("create budget state directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".budget-*.tmp")
	if err != nil {
		return oddstypes.NewPersistenceError("create temp budget file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oddstypes.NewPersistenceError("write temp budget file", err)
	}
	if err := tmp.Close(); err != nil {
		return oddstypes.NewPersistenceError("close temp budget file", err)
	}

	if err := os.Rename(tmpPath, t.path); err != nil {
		return oddstypes.NewPersistenceError("rename temp budget file", err)
	}

	BudgetSaveTotal.Inc()
	BettingPnL.Set(t.state.BettingPnL)
	AvailableBankrollUSD.Set(t.state.AvailableBankroll())
	return nil
}

// RecordAPISpend records a vendor API cost against the API bucket.
func (t *Tracker) RecordAPISpend(amount float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.APISpent += amount
	if t.state.APIBudget-t.state.APISpent < 0 {
		t.logger.Warn("API budget exceeded",
			zap.Float64("spent", t.state.APISpent),
			zap.Float64("budget", t.state.APIBudget))
	}
	return t.save()
}

// RecordBet places a new pending bet. Returns oddstypes.KindBudgetViolation
// if available bankroll can't cover the stake; otherwise the stake is
// clamped to maxSingle before the bet is recorded.
func (t *Tracker) RecordBet(eventID, outcome, bookmaker string, price int, stake float64) (*oddstypes.BetRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	available := t.state.AvailableBankroll()
	if stake > available {
		t.logger.Warn("insufficient bankroll for bet",
			zap.Float64("stake", stake), zap.Float64("available", available))
		return nil, oddstypes.NewBudgetViolation(
			fmt.Sprintf("stake %.2f exceeds available bankroll %.2f", stake, available))
	}

	if stake > t.maxSingle {
		t.logger.Warn("stake exceeds single-bet limit, capping",
			zap.Float64("stake", stake), zap.Float64("limit", t.maxSingle))
		stake = t.maxSingle
	}

	bet := &oddstypes.BetRecord{
		ID:        fmt.Sprintf("bet_%06d", t.state.BetsPlaced+1),
		EventID:   eventID,
		Outcome:   outcome,
		Bookmaker: bookmaker,
		Price:     price,
		Stake:     stake,
		Status:    oddstypes.BetPending,
		PlacedAt:  t.now(),
	}

	t.state.Bets = append(t.state.Bets, *bet)
	t.state.BetsPlaced++

	t.logger.Info("bet recorded",
		zap.String("bet_id", bet.ID), zap.String("outcome", outcome),
		zap.Int("price", price), zap.Float64("stake", stake))

	if err := t.save(); err != nil {
		return nil, err
	}
	return bet, nil
}

// PlaceBet is the automated bet-execution surface. It is intentionally
// unimplemented: the operator places bets manually at the book and then
// records them with RecordBet.
func (t *Tracker) PlaceBet(eventID, outcome, bookmaker string, price int, stake float64) error {
	return oddstypes.NewNotImplemented(
		"automated bet placement is not supported; place the bet manually and record it with RecordBet")
}

// RecordWin settles a pending bet as a win, computing payout from American
// odds.
func (t *Tracker) RecordWin(betID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bet := t.findBet(betID)
	if bet == nil {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s not found", betID))
	}
	if bet.Status != oddstypes.BetPending {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s is not pending (status: %s)", betID, bet.Status))
	}

	var payout float64
	if bet.Price < 0 {
		payout = bet.Stake + bet.Stake*100.0/float64(-bet.Price)
	} else {
		payout = bet.Stake + bet.Stake*float64(bet.Price)/100.0
	}

	bet.Payout = roundCents(payout)
	bet.PnL = roundCents(payout - bet.Stake)
	bet.Status = oddstypes.BetWin
	settledAt := t.now()
	bet.SettledAt = &settledAt

	t.state.BettingPnL += bet.PnL
	t.state.BetsSettled++

	t.logger.Info("bet won", zap.String("bet_id", betID),
		zap.Float64("payout", bet.Payout), zap.Float64("pnl", bet.PnL))

	return t.save()
}

// RecordLoss settles a pending bet as a loss.
func (t *Tracker) RecordLoss(betID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bet := t.findBet(betID)
	if bet == nil {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s not found", betID))
	}
	if bet.Status != oddstypes.BetPending {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s is not pending (status: %s)", betID, bet.Status))
	}

	bet.Payout = 0
	bet.PnL = -bet.Stake
	bet.Status = oddstypes.BetLoss
	settledAt := t.now()
	bet.SettledAt = &settledAt

	t.state.BettingPnL += bet.PnL
	t.state.BetsSettled++

	t.logger.Warn("bet lost", zap.String("bet_id", betID), zap.Float64("stake", bet.Stake))

	if t.state.AvailableBankroll() < minBet {
		t.logger.Warn("bankroll critically low, cannot place new bets")
	}

	return t.save()
}

// RecordVoid settles a bet as voided; its stake is returned with zero P&L.
func (t *Tracker) RecordVoid(betID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bet := t.findBet(betID)
	if bet == nil {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s not found", betID))
	}
	if bet.Status != oddstypes.BetPending {
		return oddstypes.NewInvalidInput(fmt.Sprintf("bet %s is not pending (status: %s)", betID, bet.Status))
	}

	bet.Payout = bet.Stake
	bet.PnL = 0
	bet.Status = oddstypes.BetVoid
	settledAt := t.now()
	bet.SettledAt = &settledAt
	t.state.BetsSettled++

	t.logger.Info("bet voided, stake returned", zap.String("bet_id", betID))

	return t.save()
}

// ReleaseFromReserve moves up to $100 from reserve to bankroll, gated on
// CanReleaseReserve.
func (t *Tracker) ReleaseFromReserve(amount float64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CanReleaseReserve() {
		t.logger.Warn("cannot release reserve yet",
			zap.Int("bets_settled", t.state.BetsSettled),
			zap.Float64("betting_pnl", t.state.BettingPnL))
		return false, nil
	}

	if amount > maxReserveRelease {
		amount = maxReserveRelease
	}
	if amount > t.state.Reserve {
		amount = t.state.Reserve
	}
	if amount <= 0 {
		return false, nil
	}

	t.state.Reserve -= amount
	t.state.BettingBankroll += amount

	t.logger.Info("released reserve to bankroll",
		zap.Float64("amount", amount), zap.Float64("reserve", t.state.Reserve))

	if err := t.save(); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Tracker) findBet(betID string) *oddstypes.BetRecord {
	for i := range t.state.Bets {
		if t.state.Bets[i].ID == betID {
			return &t.state.Bets[i]
		}
	}
	return nil
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
