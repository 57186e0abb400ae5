// Package oddsmath implements the odds-conversion and stake-sizing math
// that every detector builds on: pure functions, no state, no I/O.
package oddsmath

import (
	"math"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// MaxSingleLeg and MaxArbTotal are the platform's hard risk caps:
// caller-supplied budgets are clamped to these, never exceeded.
const (
	MaxSingleLeg = 50.0
	MaxArbTotal  = 100.0
)

// AmericanToProb converts an American-odds integer to implied probability.
func AmericanToProb(price int) (float64, error) {
	if price == 0 || abs(price) < 100 {
		return 0, oddstypes.NewInvalidInput("american price must be nonzero with |price| >= 100")
	}
	if price < 0 {
		return float64(-price) / float64(-price+100), nil
	}
	return 100.0 / float64(price+100), nil
}

// ProbToAmerican converts an implied probability back to American odds.
func ProbToAmerican(p float64) (int, error) {
	if p <= 0 || p >= 1 {
		return 0, oddstypes.NewInvalidInput("probability must be strictly between 0 and 1")
	}
	if p >= 0.5 {
		return -int(math.Round(100 * p / (1 - p))), nil
	}
	return int(math.Round(100 * (1 - p) / p)), nil
}

// AmericanToDecimal returns decimal odds, the inverse of implied probability.
func AmericanToDecimal(price int) (float64, error) {
	p, err := AmericanToProb(price)
	if err != nil {
		return 0, err
	}
	return 1 / p, nil
}

// TwoLegArbStakes splits totalBudget across two complementary legs so each
// side earns the same payout, clamping to MaxSingleLeg when necessary.
func TwoLegArbStakes(totalBudget, pA, pB float64) (stakeA, stakeB float64, err error) {
	if pA+pB <= 0 {
		return 0, 0, oddstypes.NewInvalidInput("pA + pB must be positive")
	}

	stakeA = totalBudget * pA / (pA + pB)
	stakeB = totalBudget * pB / (pA + pB)

	largest := stakeA
	if stakeB > largest {
		largest = stakeB
	}
	if largest > MaxSingleLeg {
		scale := MaxSingleLeg / largest
		stakeA *= scale
		stakeB *= scale
	}

	return roundCents(stakeA), roundCents(stakeB), nil
}

// ValueBetStake implements the stake formula shared by value bets and
// cross-platform value opportunities: it
// saturates at a 10% edge and is rounded to cents.
func ValueBetStake(edge, maxSingleBet float64) float64 {
	ratio := edge / 0.10
	if ratio > 1.0 {
		ratio = 1.0
	}
	return roundCents(maxSingleBet * ratio)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
