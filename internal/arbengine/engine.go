// Package arbengine detects cross-book arbitrage and value-bet
// opportunities within one batch of events. It is pure CPU:
// no I/O, no suspension points, deterministic given an event batch.
package arbengine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddsmath"
	"github.com/avidal/oddsarb/internal/oddstypes"
)

// Config bounds the engine's detection thresholds and stake caps. Hard
// platform caps (MaxSingleBet <= 50.0, MaxArbTotal <= 100.0) are enforced
// in New, independent of caller input.
type Config struct {
	MinEdge         float64
	MinEdgeValueBet float64
	MaxSingleBet    float64
	MaxArbTotal     float64
}

// Engine runs cross-book arbitrage and value-bet detection over event
// batches.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// New clamps caller-supplied caps to the platform maximum and returns an
// Engine ready to scan event batches.
func New(cfg Config, logger *zap.Logger) *Engine {
	if cfg.MaxSingleBet > oddsmath.MaxSingleLeg || cfg.MaxSingleBet <= 0 {
		cfg.MaxSingleBet = oddsmath.MaxSingleLeg
	}
	if cfg.MaxArbTotal > oddsmath.MaxArbTotal || cfg.MaxArbTotal <= 0 {
		cfg.MaxArbTotal = oddsmath.MaxArbTotal
	}
	return &Engine{cfg: cfg, logger: logger}
}

// quote pairs a bookmaker with one of its outcomes, flattened out of the
// per-event bookmaker/market nesting for easier grouping.
type quote struct {
	bookmaker string
	outcome   oddstypes.Outcome
}

// Scan returns opportunities detected across all events, sorted by edge
// descending with a stable tie order (discovery order preserved).
func (e *Engine) Scan(events []oddstypes.Event) []oddstypes.ArbOpportunity {
	start := time.Now()
	defer func() {
		ScanDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	var out []oddstypes.ArbOpportunity
	for _, event := range events {
		out = append(out, e.scanEvent(event)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Edge > out[j].Edge
	})

	for _, opp := range out {
		OpportunitiesDetectedTotal.WithLabelValues(string(opp.Strategy)).Inc()
		EdgeRatio.Observe(opp.Edge)
		stakeSum := 0.0
		for _, leg := range opp.Legs {
			stakeSum += leg.Stake
		}
		OpportunityStakeUSD.Observe(stakeSum)
	}

	return out
}

func (e *Engine) scanEvent(event oddstypes.Event) []oddstypes.ArbOpportunity {
	byMarket := e.flatten(event)

	marketTypes := make([]oddstypes.MarketType, 0, len(byMarket))
	for marketType := range byMarket {
		marketTypes = append(marketTypes, marketType)
	}
	sort.Slice(marketTypes, func(i, j int) bool { return marketTypes[i] < marketTypes[j] })

	var out []oddstypes.ArbOpportunity
	for _, marketType := range marketTypes {
		quotes := byMarket[marketType]
		switch marketType {
		case oddstypes.MarketH2H:
			out = append(out, e.crossBookH2H(event, quotes)...)
		case oddstypes.MarketSpreads:
			out = append(out, e.crossBookSpreads(event, quotes)...)
		case oddstypes.MarketTotals:
			out = append(out, e.crossBookTotals(event, quotes)...)
		}
		out = append(out, e.valueBets(event, marketType, quotes)...)
	}

	return out
}

// flatten collects every (bookmaker, outcome) pair per market type present
// on the event. Malformed outcomes are skipped and logged at debug; they
// never fail the scan.
func (e *Engine) flatten(event oddstypes.Event) map[oddstypes.MarketType][]quote {
	byMarket := make(map[oddstypes.MarketType][]quote)

	for _, bm := range event.Bookmakers {
		for _, market := range bm.Markets {
			seen := make(map[string]bool)
			for _, outcome := range market.Outcomes {
				if outcome.Price == 0 {
					e.skip(event, bm.Bookmaker, market.MarketType, "zero_price")
					continue
				}
				if market.MarketType != oddstypes.MarketH2H && outcome.Point == nil {
					e.skip(event, bm.Bookmaker, market.MarketType, "missing_point")
					continue
				}
				key := strings.ToLower(outcome.Name)
				if market.MarketType != oddstypes.MarketH2H && outcome.Point != nil {
					key = fmt.Sprintf("%s|%v", key, *outcome.Point)
				}
				if seen[key] {
					e.skip(event, bm.Bookmaker, market.MarketType, "duplicate_outcome")
					continue
				}
				seen[key] = true

				byMarket[market.MarketType] = append(byMarket[market.MarketType], quote{
					bookmaker: bm.Bookmaker,
					outcome:   outcome,
				})
			}
		}
	}

	return byMarket
}

func (e *Engine) skip(event oddstypes.Event, bookmaker string, marketType oddstypes.MarketType, reason string) {
	MalformedOutcomesSkippedTotal.WithLabelValues(reason).Inc()
	e.logger.Debug("skipping malformed outcome",
		zap.String("event_id", event.ID),
		zap.String("bookmaker", bookmaker),
		zap.String("market_type", string(marketType)),
		zap.String("reason", reason),
	)
}

// bestOffer returns the quote with the lowest implied probability among qs
// (the best price for the bettor).
func bestOffer(qs []quote) (quote, float64, bool) {
	var best quote
	bestProb := math.Inf(1)
	found := false
	for _, q := range qs {
		p, err := oddsmath.AmericanToProb(q.outcome.Price)
		if err != nil {
			continue
		}
		if p < bestProb {
			bestProb = p
			best = q
			found = true
		}
	}
	return best, bestProb, found
}

func (e *Engine) crossBookH2H(event oddstypes.Event, qs []quote) []oddstypes.ArbOpportunity {
	byName := make(map[string][]quote)
	for _, q := range qs {
		byName[q.outcome.Name] = append(byName[q.outcome.Name], q)
	}
	if len(byName) != 2 {
		return nil
	}

	var names []string
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	bestA, pA, okA := bestOffer(byName[names[0]])
	bestB, pB, okB := bestOffer(byName[names[1]])
	if !okA || !okB {
		return nil
	}

	return e.emitCrossBook(event, oddstypes.MarketH2H, bestA, pA, bestB, pB)
}

func (e *Engine) crossBookSpreads(event oddstypes.Event, qs []quote) []oddstypes.ArbOpportunity {
	groups := make(map[float64][]quote)
	for _, q := range qs {
		if q.outcome.Point == nil {
			continue
		}
		abs := math.Abs(*q.outcome.Point)
		groups[abs] = append(groups[abs], q)
	}

	absPoints := make([]float64, 0, len(groups))
	for abs := range groups {
		absPoints = append(absPoints, abs)
	}
	sort.Float64s(absPoints)

	var out []oddstypes.ArbOpportunity
	for _, abs := range absPoints {
		group := groups[abs]
		var neg, pos []quote
		for _, q := range group {
			switch {
			case *q.outcome.Point < 0:
				neg = append(neg, q)
			case *q.outcome.Point > 0:
				pos = append(pos, q)
			}
		}
		if len(neg) == 0 || len(pos) == 0 {
			continue
		}

		bestNeg, pNeg, okNeg := bestOffer(neg)
		bestPos, pPos, okPos := bestOffer(pos)
		if !okNeg || !okPos {
			continue
		}
		if bestNeg.outcome.Name == bestPos.outcome.Name {
			continue
		}

		out = append(out, e.emitCrossBook(event, oddstypes.MarketSpreads, bestNeg, pNeg, bestPos, pPos)...)
	}
	return out
}

func (e *Engine) crossBookTotals(event oddstypes.Event, qs []quote) []oddstypes.ArbOpportunity {
	groups := make(map[float64][]quote)
	for _, q := range qs {
		if q.outcome.Point == nil {
			continue
		}
		groups[*q.outcome.Point] = append(groups[*q.outcome.Point], q)
	}

	points := make([]float64, 0, len(groups))
	for point := range groups {
		points = append(points, point)
	}
	sort.Float64s(points)

	var out []oddstypes.ArbOpportunity
	for _, point := range points {
		group := groups[point]
		var overs, unders []quote
		for _, q := range group {
			switch strings.ToLower(q.outcome.Name) {
			case "over":
				overs = append(overs, q)
			case "under":
				unders = append(unders, q)
			}
		}
		if len(overs) == 0 || len(unders) == 0 {
			continue
		}

		bestOver, pOver, okOver := bestOffer(overs)
		bestUnder, pUnder, okUnder := bestOffer(unders)
		if !okOver || !okUnder {
			continue
		}

		out = append(out, e.emitCrossBook(event, oddstypes.MarketTotals, bestOver, pOver, bestUnder, pUnder)...)
	}
	return out
}

func (e *Engine) emitCrossBook(event oddstypes.Event, marketType oddstypes.MarketType, a quote, pA float64, b quote, pB float64) []oddstypes.ArbOpportunity {
	if a.bookmaker == b.bookmaker {
		return nil
	}

	edge := 1 - (pA + pB)
	if edge < e.cfg.MinEdge {
		return nil
	}

	stakeA, stakeB, err := oddsmath.TwoLegArbStakes(e.cfg.MaxArbTotal, pA, pB)
	if err != nil {
		e.logger.Debug("stake sizing failed for cross-book pair", zap.Error(err))
		return nil
	}

	expires := event.CommenceTime
	return []oddstypes.ArbOpportunity{{
		EventID:    event.ID,
		EventName:  fmt.Sprintf("%s @ %s", event.AwayTeam, event.HomeTeam),
		Sport:      event.Sport,
		MarketType: marketType,
		Strategy:   oddstypes.StrategyCrossBookArb,
		Edge:       edge,
		Legs: []oddstypes.ArbLeg{
			leg(a, pA, stakeA),
			leg(b, pB, stakeB),
		},
		DetectedAt: time.Now(),
		ExpiresAt:  &expires,
	}}
}

// valueBetKey groups offers for consensus: h2h groups by name alone; spreads/totals
// group by name joined with the signed point so unlike lines never collide.
func valueBetKey(o oddstypes.Outcome, marketType oddstypes.MarketType) string {
	if marketType == oddstypes.MarketH2H {
		return strings.ToLower(o.Name)
	}
	point := 0.0
	if o.Point != nil {
		point = *o.Point
	}
	return fmt.Sprintf("%s|%+g", strings.ToLower(o.Name), point)
}

func (e *Engine) valueBets(event oddstypes.Event, marketType oddstypes.MarketType, qs []quote) []oddstypes.ArbOpportunity {
	groups := make(map[string][]quote)
	for _, q := range qs {
		key := valueBetKey(q.outcome, marketType)
		groups[key] = append(groups[key], q)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []oddstypes.ArbOpportunity
	for _, key := range keys {
		group := groups[key]
		distinctBooks := make(map[string]bool)
		for _, q := range group {
			distinctBooks[q.bookmaker] = true
		}
		if len(distinctBooks) < 3 {
			continue
		}

		type offer struct {
			q    quote
			prob float64
		}
		offers := make([]offer, 0, len(group))
		for _, q := range group {
			p, err := oddsmath.AmericanToProb(q.outcome.Price)
			if err != nil {
				continue
			}
			offers = append(offers, offer{q: q, prob: p})
		}
		if len(offers) == 0 {
			continue
		}
		probs := make([]float64, len(offers))
		for i, o := range offers {
			probs[i] = o.prob
		}
		consensus := mean(probs)

		for _, o := range offers {
			q := o.q
			offerProb := o.prob
			edge := consensus - offerProb
			if edge < e.cfg.MinEdgeValueBet {
				continue
			}

			stake := oddsmath.ValueBetStake(edge, e.cfg.MaxSingleBet)
			expires := event.CommenceTime
			out = append(out, oddstypes.ArbOpportunity{
				EventID:    event.ID,
				EventName:  fmt.Sprintf("%s @ %s", event.AwayTeam, event.HomeTeam),
				Sport:      event.Sport,
				MarketType: marketType,
				Strategy:   oddstypes.StrategyValueBet,
				Edge:       edge,
				Legs:       []oddstypes.ArbLeg{leg(q, offerProb, stake)},
				DetectedAt: time.Now(),
				ExpiresAt:  &expires,
			})
		}
	}

	return out
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func leg(q quote, prob, stake float64) oddstypes.ArbLeg {
	return oddstypes.ArbLeg{
		Bookmaker:   q.bookmaker,
		OutcomeName: q.outcome.Name,
		Price:       q.outcome.Price,
		ImpliedProb: prob,
		Stake:       stake,
		Point:       q.outcome.Point,
	}
}
