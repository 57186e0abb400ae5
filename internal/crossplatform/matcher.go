// Package crossplatform joins binary event-contract prices against
// sportsbook h2h consensus by team name and flags divergences between
// the two platforms.
package crossplatform

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddsmath"
	"github.com/avidal/oddsarb/internal/oddstypes"
)

const (
	// minVolume is the 24h-volume liquidity floor for a contract side.
	minVolume = 5.0
	// sameGameWindow is the temporal gate between a sportsbook event's
	// start and a ContractMarket's close instant.
	sameGameWindow = 12 * time.Hour
)

// Matcher detects cross_platform_value opportunities.
type Matcher struct {
	minEdgeValueBet float64
	maxSingleBet    float64
	contractKey     string
	logger          *zap.Logger
}

// New returns a Matcher with the given thresholds. contractKey is the
// bookmaker key recorded on legs recommending action on the contract
// platform itself.
func New(minEdgeValueBet, maxSingleBet float64, contractKey string, logger *zap.Logger) *Matcher {
	return &Matcher{
		minEdgeValueBet: minEdgeValueBet,
		maxSingleBet:    maxSingleBet,
		contractKey:     contractKey,
		logger:          logger,
	}
}

// sbOffer is one sportsbook h2h offer flattened out for the team-name
// index.
type sbOffer struct {
	eventID      string
	teamName     string
	opponent     string
	bookmaker    string
	price        int
	prob         float64
	commenceTime time.Time
}

// Match returns cross_platform_value opportunities for every ContractGame
// side that clears the liquidity, resolution, and same-game gates.
func (m *Matcher) Match(games []oddstypes.ContractGame, events []oddstypes.Event) []oddstypes.ArbOpportunity {
	index := m.buildIndex(events)

	var out []oddstypes.ArbOpportunity
	for _, game := range games {
		if opp, ok := m.matchSide(game, game.HomeShort, game.AwayShort, game.Home, index); ok {
			out = append(out, opp)
		}
		if opp, ok := m.matchSide(game, game.AwayShort, game.HomeShort, game.Away, index); ok {
			out = append(out, opp)
		}
	}
	return out
}

func (m *Matcher) buildIndex(events []oddstypes.Event) map[string][]sbOffer {
	index := make(map[string][]sbOffer)
	for _, event := range events {
		for _, bmq := range event.Bookmakers {
			for _, market := range bmq.Markets {
				if market.MarketType != oddstypes.MarketH2H {
					continue
				}
				for _, outcome := range market.Outcomes {
					var opponent string
					switch outcome.Name {
					case event.HomeTeam:
						opponent = event.AwayTeam
					case event.AwayTeam:
						opponent = event.HomeTeam
					default:
						continue
					}
					prob, err := oddsmath.AmericanToProb(outcome.Price)
					if err != nil {
						continue
					}
					index[outcome.Name] = append(index[outcome.Name], sbOffer{
						eventID:      event.ID,
						teamName:     outcome.Name,
						opponent:     opponent,
						bookmaker:    bmq.Bookmaker,
						price:        outcome.Price,
						prob:         prob,
						commenceTime: event.CommenceTime,
					})
				}
			}
		}
	}
	return index
}

func (m *Matcher) matchSide(game oddstypes.ContractGame, selfShort, opponentShort string, market oddstypes.ContractMarket, index map[string][]sbOffer) (oddstypes.ArbOpportunity, bool) {
	contractProb, ok := market.ImpliedProb()
	if !ok || market.Volume24h < minVolume {
		SkippedTotal.WithLabelValues("illiquid").Inc()
		return oddstypes.ArbOpportunity{}, false
	}

	selfName, ok := ResolveTeam(game.SeriesTicker, selfShort)
	if !ok {
		SkippedTotal.WithLabelValues("unresolved_team").Inc()
		return oddstypes.ArbOpportunity{}, false
	}
	opponentName, ok := ResolveTeam(game.SeriesTicker, opponentShort)
	if !ok {
		SkippedTotal.WithLabelValues("unresolved_opponent").Inc()
		return oddstypes.ArbOpportunity{}, false
	}

	var survivors []sbOffer
	for _, offer := range index[selfName] {
		if offer.opponent != opponentName {
			continue
		}
		if absDuration(offer.commenceTime.Sub(game.CloseTime)) > sameGameWindow {
			continue
		}
		survivors = append(survivors, offer)
	}
	if len(survivors) == 0 {
		SkippedTotal.WithLabelValues("no_same_game_offers").Inc()
		return oddstypes.ArbOpportunity{}, false
	}

	probs := make([]float64, len(survivors))
	for i, s := range survivors {
		probs[i] = s.prob
	}
	sbConsensus := mean(probs)

	edge := math.Abs(contractProb - sbConsensus)
	if edge < m.minEdgeValueBet {
		SkippedTotal.WithLabelValues("below_threshold").Inc()
		return oddstypes.ArbOpportunity{}, false
	}

	stake := oddsmath.ValueBetStake(edge, m.maxSingleBet)

	var legLeg oddstypes.ArbLeg
	if contractProb < sbConsensus {
		price, err := oddsmath.ProbToAmerican(contractProb)
		if err != nil {
			m.logger.Debug("probToAmerican failed for contract leg", zap.Error(err))
			return oddstypes.ArbOpportunity{}, false
		}
		legLeg = oddstypes.ArbLeg{
			Bookmaker:   m.contractKey,
			OutcomeName: selfName,
			Price:       price,
			ImpliedProb: contractProb,
			Stake:       stake,
		}
	} else {
		best := survivors[0]
		for _, s := range survivors {
			if s.prob < best.prob {
				best = s
			}
		}
		legLeg = oddstypes.ArbLeg{
			Bookmaker:   best.bookmaker,
			OutcomeName: selfName,
			Price:       best.price,
			ImpliedProb: best.prob,
			Stake:       stake,
		}
	}

	OpportunitiesDetectedTotal.Inc()
	EdgeRatio.Observe(edge)

	expires := game.CloseTime
	return oddstypes.ArbOpportunity{
		EventID:    game.EventTicker,
		EventName:  fmt.Sprintf("%s (contract: %s)", selfName, game.EventTicker),
		Sport:      game.SeriesTicker,
		MarketType: oddstypes.MarketH2H,
		Strategy:   oddstypes.StrategyCrossPlatformValue,
		Edge:       edge,
		Legs:       []oddstypes.ArbLeg{legLeg},
		DetectedAt: time.Now(),
		ExpiresAt:  &expires,
	}, true
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
