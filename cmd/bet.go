package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avidal/oddsarb/internal/budget"
	"github.com/avidal/oddsarb/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var betCmd = &cobra.Command{
	Use:   "bet",
	Short: "Record and settle manually placed bets",
	Long: `Bets are placed manually at the bookmaker; these subcommands record
them against the budget state and settle them when the event resolves.

Examples:
  # Record a bet placed at FanDuel
  oddsarb bet record --event evt123 --outcome "Kansas City Chiefs" \
    --bookmaker fanduel --odds -150 --stake 30

  # Settle it
  oddsarb bet win bet_000001
  oddsarb bet loss bet_000001
  oddsarb bet void bet_000001`,
}

//nolint:gochecknoglobals // Cobra boilerplate
var betRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a manually placed bet as pending",
	RunE:  runBetRecord,
}

//nolint:gochecknoglobals // Cobra boilerplate
var betWinCmd = &cobra.Command{
	Use:   "win BET_ID",
	Short: "Settle a pending bet as a win",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settleBet(args[0], "win")
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var betLossCmd = &cobra.Command{
	Use:   "loss BET_ID",
	Short: "Settle a pending bet as a loss",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settleBet(args[0], "loss")
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var betVoidCmd = &cobra.Command{
	Use:   "void BET_ID",
	Short: "Settle a pending bet as voided, returning its stake",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settleBet(args[0], "void")
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(betCmd)
	betCmd.AddCommand(betRecordCmd, betWinCmd, betLossCmd, betVoidCmd)

	f := betRecordCmd.Flags()
	f.String("event", "", "event id the bet is on")
	f.String("outcome", "", "outcome name the bet backs")
	f.String("bookmaker", "", "bookmaker key the bet was placed at")
	f.Int("odds", 0, "American odds taken")
	f.Float64("stake", 0, "stake in dollars")
	_ = betRecordCmd.MarkFlagRequired("event")
	_ = betRecordCmd.MarkFlagRequired("outcome")
	_ = betRecordCmd.MarkFlagRequired("bookmaker")
	_ = betRecordCmd.MarkFlagRequired("odds")
	_ = betRecordCmd.MarkFlagRequired("stake")
}

// loadBudgetTracker builds the budget tracker the same way run does, so
// the bet subcommands mutate the same state file the scan loop reports on.
func loadBudgetTracker() (*budget.Tracker, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return budget.Load(cfg.BudgetFile, cfg.MaxSingleBet, logger), nil
}

func runBetRecord(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	eventID, _ := f.GetString("event")
	outcome, _ := f.GetString("outcome")
	bookmaker, _ := f.GetString("bookmaker")
	odds, _ := f.GetInt("odds")
	stake, _ := f.GetFloat64("stake")

	tr, err := loadBudgetTracker()
	if err != nil {
		return err
	}

	bet, err := tr.RecordBet(eventID, outcome, bookmaker, odds, stake)
	if err != nil {
		return err
	}

	fmt.Printf("recorded %s: %s @ %s, %+d for $%.2f\n",
		bet.ID, bet.Outcome, bet.Bookmaker, bet.Price, bet.Stake)
	return nil
}

func settleBet(betID, result string) error {
	tr, err := loadBudgetTracker()
	if err != nil {
		return err
	}

	switch result {
	case "win":
		err = tr.RecordWin(betID)
	case "loss":
		err = tr.RecordLoss(betID)
	case "void":
		err = tr.RecordVoid(betID)
	}
	if err != nil {
		return err
	}

	state := tr.State()
	fmt.Printf("settled %s as %s; betting P&L now $%.2f over %d settled bets\n",
		betID, result, state.BettingPnL, state.BetsSettled)
	return nil
}
