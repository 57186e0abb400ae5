package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/arbengine"
	"github.com/avidal/oddsarb/internal/budget"
	"github.com/avidal/oddsarb/internal/contractsource"
	"github.com/avidal/oddsarb/internal/creditguard"
	"github.com/avidal/oddsarb/internal/crossplatform"
	"github.com/avidal/oddsarb/internal/oddsource"
	"github.com/avidal/oddsarb/internal/oddstypes"
	"github.com/avidal/oddsarb/internal/presets"
	"github.com/avidal/oddsarb/internal/scandriver"
	"github.com/avidal/oddsarb/internal/storage"
	"github.com/avidal/oddsarb/internal/tracker"
	"github.com/avidal/oddsarb/pkg/config"
	"github.com/avidal/oddsarb/pkg/healthprobe"
	"github.com/avidal/oddsarb/pkg/httpserver"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scan cycle, or loop on an interval",
	Long: `Fetches odds for the configured sports, detects cross-book
arbitrage and value-bet opportunities, and (with --cross-platform) joins
sportsbook consensus against event-contract prices. Novel opportunities
are printed and persisted to the opportunities state file; by default
the command runs a single cycle and exits.`,
	RunE: runScan,
}

func init() {
	f := runCmd.Flags()
	f.Bool("loop", false, "keep scanning on --interval instead of exiting after one cycle")
	f.Duration("interval", 0, "interval between cycles in loop mode (default from SCAN_INTERVAL or 5m)")
	f.StringSlice("sports", nil, "sport keys to scan (default from SCAN_SPORTS or the built-in four)")
	f.StringSlice("bookmakers", nil, "restrict to this bookmaker key list (default from SCAN_BOOKMAKERS or unrestricted)")
	f.String("state", "", "two-letter state code resolving --bookmakers to that state's licensed books")
	f.Float64("min-edge", -1, "minimum arbitrage edge, 0..1 (default from MIN_EDGE or 0.0)")
	f.Float64("min-edge-vb", -1, "minimum value-bet edge, 0..1 (default from MIN_EDGE_VALUE_BET or 0.05)")
	f.String("api-key", "", "odds source API key (default from ODDS_API_KEY)")
	f.String("contract-api-key", "", "event-contract platform API key (default from CONTRACT_API_KEY)")
	f.Bool("cross-platform", false, "enable cross-platform detection against event-contract prices")
	f.String("state-file", "", "path to the opportunities state file (default from OPPORTUNITIES_FILE)")
	f.String("budget-file", "", "path to the budget state file (default from BUDGET_FILE)")
	f.String("port", "", "HTTP port for /metrics, /health, /ready, /api/opportunities (default from HTTP_PORT)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	if len(cfg.Bookmakers) == 0 && cfg.StatePreset != "" {
		if books, ok := presets.ResolveState(cfg.StatePreset); ok {
			cfg.Bookmakers = books
		}
	}

	if cfg.OddsAPIKey == "" {
		return &ExitError{Code: 1, Err: fmt.Errorf("missing odds source API key: set ODDS_API_KEY or pass --api-key")}
	}
	if cfg.CrossPlatformMode && cfg.ContractAPIKey == "" {
		return &ExitError{Code: 1, Err: fmt.Errorf("cross-platform mode requires a contract API key: set CONTRACT_API_KEY or pass --contract-api-key")}
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sportsCache, err := oddsource.NewSportsCache()
	if err != nil {
		return fmt.Errorf("create sports cache: %w", err)
	}
	defer sportsCache.Close()

	oddsClient := oddsource.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, logger, sportsCache)

	var contractClient *contractsource.Client
	var matcher *crossplatform.Matcher
	if cfg.CrossPlatformMode {
		contractClient = contractsource.New(cfg.ContractAPIBaseURL, cfg.ContractAPIKey, logger)
		matcher = crossplatform.New(cfg.MinEdgeValueBet, cfg.MaxSingleBet, "contract-platform", logger)
	}

	engine := arbengine.New(arbengine.Config{
		MinEdge:         cfg.MinEdge,
		MinEdgeValueBet: cfg.MinEdgeValueBet,
		MaxSingleBet:    cfg.MaxSingleBet,
		MaxArbTotal:     cfg.MaxArbTotal,
	}, logger)

	trk := tracker.Load(cfg.OpportunitiesFile, cfg.OpportunityTTL, logger)
	budgetTracker := budget.Load(cfg.BudgetFile, cfg.MaxSingleBet, logger)
	guard := creditguard.New(cfg.CreditThreshold, logger)

	store, err := buildStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage sink: %w", err)
	}

	probe := healthprobe.New()
	srv := httpserver.New(&httpserver.Config{
		Port:    cfg.HTTPPort,
		Logger:  logger,
		Probe:   probe,
		Tracker: trk,
	})

	driver := scandriver.New(
		scandriver.Config{
			Sports:                cfg.Sports,
			Regions:               cfg.Regions,
			Markets:               cfg.Markets,
			Bookmakers:            cfg.Bookmakers,
			CrossPlatformMode:     cfg.CrossPlatformMode,
			ContractSeriesTickers: cfg.ContractSeriesTickers,
			ScanInterval:          cfg.ScanInterval,
			LoopMode:              cfg.LoopMode,
			MaxConcurrentFetches:  cfg.MaxConcurrentFetches,
		},
		oddsClient, contractClient, engine, matcher, trk, store, guard, logger,
		func(novel []oddstypes.OpportunityRecord) {
			probe.CycleCompleted()
			reportNovel(logger, novel)
		},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()
	probe.SetReady(true)

	runErr := driver.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", zap.Error(err))
	}

	final := budgetTracker.State()
	logger.Info("final budget state",
		zap.Float64("api_spent", final.APISpent),
		zap.Float64("betting_pnl", final.BettingPnL),
		zap.Float64("available_bankroll", final.AvailableBankroll()))

	if runErr != nil {
		return mapCycleError(runErr)
	}
	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags over environment-derived
// defaults; an unset flag never clobbers its env-derived value.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()

	if f.Changed("loop") {
		cfg.LoopMode, _ = f.GetBool("loop")
	}
	if f.Changed("interval") {
		cfg.ScanInterval, _ = f.GetDuration("interval")
	}
	if f.Changed("sports") {
		cfg.Sports, _ = f.GetStringSlice("sports")
	}
	if f.Changed("bookmakers") {
		cfg.Bookmakers, _ = f.GetStringSlice("bookmakers")
	}
	if f.Changed("state") {
		code, _ := f.GetString("state")
		if books, ok := presets.ResolveState(code); ok {
			cfg.Bookmakers = books
		}
	}
	if f.Changed("min-edge") {
		cfg.MinEdge, _ = f.GetFloat64("min-edge")
	}
	if f.Changed("min-edge-vb") {
		cfg.MinEdgeValueBet, _ = f.GetFloat64("min-edge-vb")
	}
	if f.Changed("api-key") {
		cfg.OddsAPIKey, _ = f.GetString("api-key")
	}
	if f.Changed("contract-api-key") {
		cfg.ContractAPIKey, _ = f.GetString("contract-api-key")
	}
	if f.Changed("cross-platform") {
		cfg.CrossPlatformMode, _ = f.GetBool("cross-platform")
	}
	if f.Changed("state-file") {
		cfg.OpportunitiesFile, _ = f.GetString("state-file")
	}
	if f.Changed("budget-file") {
		cfg.BudgetFile, _ = f.GetString("budget-file")
	}
	if f.Changed("port") {
		cfg.HTTPPort, _ = f.GetString("port")
	}
}

func buildStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}
	return storage.NewConsoleStorage(logger), nil
}

// reportNovel is the operator-output step: one line per novel opportunity.
// A game already underway at detection time is tagged live rather than
// excluded — in-progress games re-price at different speeds across
// bookmakers and are prime arbitrage targets, not noise to filter out.
func reportNovel(logger *zap.Logger, novel []oddstypes.OpportunityRecord) {
	for _, rec := range novel {
		var totalStake float64
		for _, leg := range rec.Opportunity.Legs {
			totalStake += leg.Stake
		}
		live := rec.Opportunity.ExpiresAt != nil && rec.Opportunity.ExpiresAt.Before(time.Now())
		logger.Info("novel opportunity",
			zap.String("id", rec.ID),
			zap.String("strategy", string(rec.Opportunity.Strategy)),
			zap.String("event", rec.Opportunity.EventID),
			zap.Float64("edge", rec.Opportunity.Edge),
			zap.Float64("stake", totalStake),
			zap.Bool("live", live))
	}
}

// mapCycleError maps a fatal cycle error to the process exit-code contract:
// bad or rejected credentials exit 1, any other upstream failure exits 2.
func mapCycleError(err error) *ExitError {
	if oddstypes.IsKind(err, oddstypes.KindAuthError) {
		return &ExitError{Code: 1, Err: err}
	}
	return &ExitError{Code: 2, Err: err}
}
