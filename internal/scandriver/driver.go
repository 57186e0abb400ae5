// Package scandriver orchestrates one scan cycle end to end (fetch,
// detect, track, persist) and the poll loop around it. Every suspension
// point is a bounded HTTP call; detection itself never blocks.
package scandriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/arbengine"
	"github.com/avidal/oddsarb/internal/contractsource"
	"github.com/avidal/oddsarb/internal/creditguard"
	"github.com/avidal/oddsarb/internal/crossplatform"
	"github.com/avidal/oddsarb/internal/oddsource"
	"github.com/avidal/oddsarb/internal/oddstypes"
	"github.com/avidal/oddsarb/internal/storage"
	"github.com/avidal/oddsarb/internal/tracker"
)

// Config bounds one Driver's scan behavior.
type Config struct {
	Sports                []string
	Regions               []string
	Markets               []string
	Bookmakers            []string
	CrossPlatformMode     bool
	ContractSeriesTickers []string
	ScanInterval          time.Duration
	LoopMode              bool
	MaxConcurrentFetches  int
}

// Driver runs one scan cycle (Odds/Contract fetch -> detectors ->
// tracker ingest -> persist) and, in loop mode, repeats it on interval.
type Driver struct {
	cfg            Config
	oddsClient     *oddsource.Client
	contractClient *contractsource.Client
	engine         *arbengine.Engine
	matcher        *crossplatform.Matcher
	tracker        *tracker.Tracker
	storage        storage.Storage
	guard          *creditguard.Guard
	logger         *zap.Logger
	onNovel        func([]oddstypes.OpportunityRecord)
}

// New constructs a Driver. onNovel is invoked with each cycle's novel
// records, the operator-output step; pass nil to
// skip operator output (e.g. in tests).
func New(
	cfg Config,
	oddsClient *oddsource.Client,
	contractClient *contractsource.Client,
	engine *arbengine.Engine,
	matcher *crossplatform.Matcher,
	trk *tracker.Tracker,
	store storage.Storage,
	guard *creditguard.Guard,
	logger *zap.Logger,
	onNovel func([]oddstypes.OpportunityRecord),
) *Driver {
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = 4
	}
	return &Driver{
		cfg:            cfg,
		oddsClient:     oddsClient,
		contractClient: contractClient,
		engine:         engine,
		matcher:        matcher,
		tracker:        trk,
		storage:        store,
		guard:          guard,
		logger:         logger,
		onNovel:        onNovel,
	}
}

// Run executes scan cycles until ctx is cancelled. In one-shot mode
// (LoopMode=false) it returns after the first cycle, surfacing that
// cycle's fatal error (if any) to the caller for exit-code mapping. In
// loop mode a fatal cycle error is printed to the operator and the next
// cycle is attempted on the normal interval, so Run only returns when
// ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	for {
		novel, err := d.RunOnce(ctx)
		if d.onNovel != nil {
			d.onNovel(novel)
		}
		if err != nil {
			printCycleError(d.logger, err)
			if !d.cfg.LoopMode {
				return err
			}
		}

		if !d.cfg.LoopMode {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.cfg.ScanInterval):
		}
	}
}

// RunOnce executes a single scan cycle: fetch, detect,
// track, persist. A fatal-cycle error (auth, rate limit, credit
// exhaustion) stops further fetches and is returned to the caller, but
// whatever events were already collected before the failure still run
// through the detectors and tracker, rather than being discarded.
// Per-sport fetch failures are absorbed and simply leave that sport's
// events absent.
func (d *Driver) RunOnce(ctx context.Context) ([]oddstypes.OpportunityRecord, error) {
	cycleID := uuid.New().String()
	logger := d.logger.With(zap.String("cycle_id", cycleID))

	start := time.Now()
	defer func() { CycleDurationSeconds.Observe(time.Since(start).Seconds()) }()
	CyclesTotal.Inc()

	d.guard.Reset()

	events, fetchErr := d.fetchAllSports(ctx, logger)
	if fetchErr != nil {
		CycleFailuresTotal.Inc()
		logger.Warn("fatal fetch error this cycle, still running detectors over already-collected events",
			zap.Int("event_count", len(events)), zap.Error(fetchErr))
	}

	candidates := d.engine.Scan(events)

	if d.cfg.CrossPlatformMode && d.matcher != nil {
		games, err := d.fetchContractGames(ctx)
		if err != nil {
			logger.Error("cross-platform fetch failed, skipping this cycle's cross-platform detection",
				zap.Error(err))
		} else {
			candidates = append(candidates, d.matcher.Match(games, events)...)
		}
	}

	if d.storage != nil {
		for _, opp := range candidates {
			if err := d.storage.StoreOpportunity(ctx, opp); err != nil {
				logger.Warn("failed to store opportunity in analytics sink", zap.Error(err))
			}
		}
	}

	novel := d.tracker.Ingest(candidates)
	logger.Info("scan cycle complete",
		zap.Int("event_count", len(events)),
		zap.Int("candidate_count", len(candidates)),
		zap.Int("novel_count", len(novel)))

	if fetchErr != nil {
		return novel, fetchErr
	}

	return novel, nil
}

// sportResult is one sport fetch's outcome, collected off the worker
// pool below.
type sportResult struct {
	sport  string
	events []oddstypes.Event
	err    error
}

// fetchAllSports fetches odds for every configured sport. Fetches run
// across a bounded worker pool (sport fetches may proceed in parallel)
// and all must complete before the detectors run. A worker
// checks the credit guard before fetching each sport it takes off the
// queue, so a mid-cycle trip stops further fetches from starting without
// cancelling ones already in flight.
func (d *Driver) fetchAllSports(ctx context.Context, logger *zap.Logger) ([]oddstypes.Event, error) {
	sports := d.cfg.Sports
	workers := d.cfg.MaxConcurrentFetches
	if workers > len(sports) {
		workers = len(sports)
	}
	if workers <= 0 {
		workers = 1
	}

	sportsCh := make(chan string)
	resultsCh := make(chan sportResult, len(sports))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sport := range sportsCh {
				if !d.guard.Allow() {
					resultsCh <- sportResult{sport: sport, err: creditguard.CreditExhaustedErr(-1)}
					continue
				}

				events, credits, err := d.oddsClient.ListOdds(ctx, sport, d.cfg.Regions, d.cfg.Markets, d.cfg.Bookmakers)
				if credits.Remaining >= 0 {
					d.guard.Observe(credits.Remaining)
				}
				resultsCh <- sportResult{sport: sport, events: events, err: err}
			}
		}()
	}

	go func() {
		defer close(sportsCh)
		for _, s := range sports {
			select {
			case sportsCh <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var events []oddstypes.Event
	for res := range resultsCh {
		if res.err != nil {
			var domErr *oddstypes.DomainError
			if errors.As(res.err, &domErr) {
				switch domErr.Kind {
				case oddstypes.KindAuthError, oddstypes.KindRateLimited, oddstypes.KindCreditExhausted:
					logger.Error("fatal cycle error fetching odds",
						zap.String("sport", res.sport), zap.Error(res.err))
					return events, res.err
				}
			}
			logger.Error("sport fetch failed, omitting from this cycle",
				zap.String("sport", res.sport), zap.Error(res.err))
			SportFetchFailuresTotal.Inc()
			continue
		}
		events = append(events, res.events...)
	}

	return events, nil
}

// fetchContractGames fetches every configured contract series and
// flattens the results into one ContractGame slice.
func (d *Driver) fetchContractGames(ctx context.Context) ([]oddstypes.ContractGame, error) {
	var games []oddstypes.ContractGame
	for _, series := range d.cfg.ContractSeriesTickers {
		g, err := d.contractClient.ListGames(ctx, series)
		if err != nil {
			return nil, fmt.Errorf("list contract games for series %s: %w", series, err)
		}
		games = append(games, g...)
	}
	return games, nil
}

// printCycleError surfaces a fatal cycle error to the operator channel
// as a single-line cause plus remediation hint — no internal stack
// traces in the happy-path output.
func printCycleError(logger *zap.Logger, err error) {
	hint := "retry the next cycle"
	var domErr *oddstypes.DomainError
	if errors.As(err, &domErr) {
		switch domErr.Kind {
		case oddstypes.KindAuthError:
			hint = "check ODDS_API_KEY / --api-key"
		case oddstypes.KindRateLimited:
			hint = "wait and retry; the vendor is rate limiting this key"
		case oddstypes.KindCreditExhausted:
			hint = "renew or top up odds-source request credits"
		}
	}
	logger.Error("scan cycle aborted", zap.String("cause", err.Error()), zap.String("hint", hint))
}
