package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Inspect and adjust the budget state",
	Long: `Display the three-bucket budget allocation (API budget, betting
bankroll, reserve), record API spend against it, and release reserve
funds into the bankroll once the release gate is met.`,
}

//nolint:gochecknoglobals // Cobra boilerplate
var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current budget state",
	RunE:  runBudgetShow,
}

//nolint:gochecknoglobals // Cobra boilerplate
var budgetSpendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Record API spend against the API bucket",
	RunE:  runBudgetSpend,
}

//nolint:gochecknoglobals // Cobra boilerplate
var budgetReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release reserve funds into the betting bankroll",
	RunE:  runBudgetRelease,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.AddCommand(budgetShowCmd, budgetSpendCmd, budgetReleaseCmd)

	budgetSpendCmd.Flags().Float64("amount", 0, "dollars spent on the odds API")
	_ = budgetSpendCmd.MarkFlagRequired("amount")

	budgetReleaseCmd.Flags().Float64("amount", 0, "dollars to move from reserve to bankroll")
	_ = budgetReleaseCmd.MarkFlagRequired("amount")
}

func runBudgetShow(_ *cobra.Command, _ []string) error {
	tr, err := loadBudgetTracker()
	if err != nil {
		return err
	}
	state := tr.State()

	fmt.Printf("api budget:        $%.2f ($%.2f spent)\n", state.APIBudget, state.APISpent)
	fmt.Printf("betting bankroll:  $%.2f\n", state.BettingBankroll)
	fmt.Printf("reserve:           $%.2f\n", state.Reserve)
	fmt.Printf("betting P&L:       $%+.2f\n", state.BettingPnL)
	fmt.Printf("pending stakes:    $%.2f\n", state.PendingStakes())
	fmt.Printf("available:         $%.2f\n", state.AvailableBankroll())
	fmt.Printf("bets:              %d placed, %d settled\n", state.BetsPlaced, state.BetsSettled)
	if state.CanReleaseReserve() {
		fmt.Println("reserve release:   available")
	} else {
		fmt.Println("reserve release:   locked (needs 10+ settled bets with positive P&L)")
	}
	return nil
}

func runBudgetSpend(cmd *cobra.Command, _ []string) error {
	amount, _ := cmd.Flags().GetFloat64("amount")

	tr, err := loadBudgetTracker()
	if err != nil {
		return err
	}
	if err := tr.RecordAPISpend(amount); err != nil {
		return err
	}

	state := tr.State()
	fmt.Printf("recorded $%.2f API spend; $%.2f of $%.2f used\n",
		amount, state.APISpent, state.APIBudget)
	return nil
}

func runBudgetRelease(cmd *cobra.Command, _ []string) error {
	amount, _ := cmd.Flags().GetFloat64("amount")

	tr, err := loadBudgetTracker()
	if err != nil {
		return err
	}

	released, err := tr.ReleaseFromReserve(amount)
	if err != nil {
		return err
	}
	if !released {
		return fmt.Errorf("reserve release refused: requires 10+ settled bets, positive P&L, and a non-empty reserve")
	}

	state := tr.State()
	fmt.Printf("released funds; bankroll now $%.2f, reserve $%.2f\n",
		state.BettingBankroll, state.Reserve)
	return nil
}
