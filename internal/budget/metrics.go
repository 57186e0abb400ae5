package budget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BudgetSaveTotal counts successful atomic writes of budget state.
	BudgetSaveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsarb_budget_saves_total",
		Help: "Total successful budget state persist operations.",
	})

	// BettingPnL exposes the running P&L as a gauge.
	BettingPnL = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsarb_budget_betting_pnl_usd",
		Help: "Running P&L on settled bets, in USD.",
	})

	// AvailableBankrollUSD exposes bankroll minus pending stakes.
	AvailableBankrollUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsarb_budget_available_bankroll_usd",
		Help: "Betting bankroll available after pending stakes, in USD.",
	})
)
