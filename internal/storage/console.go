package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// ConsoleStorage implements Storage by pretty-printing to stdout. It is
// the default sink (STORAGE_MODE=console) so the detector is useful with
// zero external dependencies.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage constructs a ConsoleStorage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{logger: logger}
}

// StoreOpportunity pretty-prints an opportunity to stdout.
func (c *ConsoleStorage) StoreOpportunity(ctx context.Context, opp oddstypes.ArbOpportunity) error {
	fmt.Println("\n" + "────────────────────────────────────────────────────────────")
	fmt.Printf("%s  %s  edge=%.4f\n", opp.Strategy, opp.EventName, opp.Edge)
	for _, leg := range opp.Legs {
		fmt.Printf("  %-12s %-20s %+d  stake=$%.2f\n", leg.Bookmaker, leg.OutcomeName, leg.Price, leg.Stake)
	}
	fmt.Println("────────────────────────────────────────────────────────────")

	c.logger.Debug("opportunity-stored",
		zap.String("event_id", opp.EventID),
		zap.String("strategy", string(opp.Strategy)),
		zap.Float64("edge", opp.Edge))

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
