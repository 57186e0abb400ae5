package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/avidal/oddsarb/internal/oddstypes"
)

func testOpportunity() oddstypes.ArbOpportunity {
	return oddstypes.ArbOpportunity{
		EventID:    "evt-123",
		EventName:  "Chiefs vs Ravens",
		Sport:      "americanfootball_nfl",
		MarketType: oddstypes.MarketH2H,
		Strategy:   oddstypes.StrategyCrossBookArb,
		Edge:       0.03,
		Legs: []oddstypes.ArbLeg{
			{Bookmaker: "fanduel", OutcomeName: "Kansas City Chiefs", Price: -150, ImpliedProb: 0.6, Stake: 30.0},
			{Bookmaker: "draftkings", OutcomeName: "Baltimore Ravens", Price: 170, ImpliedProb: 0.37, Stake: 20.0},
		},
		DetectedAt: time.Now(),
	}
}

func TestConsoleStorage_StoreOpportunity(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s := NewConsoleStorage(logger)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := s.StoreOpportunity(context.Background(), testOpportunity())

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains([]byte(output), []byte("Chiefs vs Ravens")) {
		t.Error("expected output to contain the event name")
	}
}

func TestConsoleStorage_Close(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	if err := NewConsoleStorage(logger).Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestPostgresStorage_StoreOpportunity(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := &PostgresStorage{db: db, logger: logger}
	opp := testOpportunity()

	mock.ExpectExec("INSERT INTO arb_opportunities").
		WithArgs(
			opp.EventID,
			opp.EventName,
			opp.Sport,
			string(opp.MarketType),
			string(opp.Strategy),
			opp.Edge,
			sqlmock.AnyArg(), // legs JSONB
			sqlmock.AnyArg(), // detected_at
			sqlmock.AnyArg(), // expires_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.StoreOpportunity(context.Background(), opp); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStorage_StoreOpportunity_Error(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	s := &PostgresStorage{db: db, logger: logger}
	opp := testOpportunity()

	mock.ExpectExec("INSERT INTO arb_opportunities").
		WillReturnError(sqlmock.ErrCancelled)

	if err := s.StoreOpportunity(context.Background(), opp); err == nil {
		t.Error("expected an error")
	}
}

func TestPostgresStorage_Close(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	s := &PostgresStorage{db: db, logger: logger}

	mock.ExpectClose()
	if err := s.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStorage_InterfaceSatisfied(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	var _ Storage = NewConsoleStorage(logger)

	db, _, _ := sqlmock.New()
	defer db.Close()
	var _ Storage = &PostgresStorage{db: db, logger: logger}
}
