package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

// PostgresStorage implements Storage over PostgreSQL, as an optional
// audit trail of every detected opportunity. The tracker's own JSON state
// file remains the durable dedup source of truth; this sink is additive
// and off by default (STORAGE_MODE=console).
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds connection parameters.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage opens and pings a Postgres connection.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{db: db, logger: cfg.Logger}, nil
}

// StoreOpportunity inserts one row per detected opportunity, with legs
// encoded as a JSONB array to accommodate the variable leg count across
// strategies (two for cross-book arb, one for value bets and
// cross-platform).
func (p *PostgresStorage) StoreOpportunity(ctx context.Context, opp oddstypes.ArbOpportunity) error {
	legsJSON, err := json.Marshal(opp.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}

	query := `
		INSERT INTO arb_opportunities (
			event_id, event_name, sport, market_type, strategy,
			edge, legs, detected_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err = p.db.ExecContext(ctx, query,
		opp.EventID,
		opp.EventName,
		opp.Sport,
		string(opp.MarketType),
		string(opp.Strategy),
		opp.Edge,
		legsJSON,
		opp.DetectedAt,
		opp.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}

	p.logger.Debug("opportunity-stored",
		zap.String("event_id", opp.EventID),
		zap.String("strategy", string(opp.Strategy)),
		zap.Int("leg_count", len(opp.Legs)))

	return nil
}

// Close closes the underlying database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
