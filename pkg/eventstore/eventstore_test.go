package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB attempts to connect to a PostgreSQL database for testing.
// It skips the test if the connection cannot be established.
func setupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	pgUser := os.Getenv("PGUSER")
	pgPassword := os.Getenv("PGPASSWORD")
	pgHost := os.Getenv("PGHOST")
	pgPort := os.Getenv("PGPORT")
	pgDB := os.Getenv("PGDATABASE")

	if pgUser == "" {
		pgUser = "user"
	}
	if pgPassword == "" {
		pgPassword = "password"
	}
	if pgHost == "" {
		pgHost = "localhost"
	}
	if pgPort == "" {
		pgPort = "5432"
	}
	if pgDB == "" {
		pgDB = "testdb"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort, pgUser, pgPassword, pgDB)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping event store tests: could not connect to postgres: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			aggregate_id UUID NOT NULL,
			aggregate_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data JSONB NOT NULL,
			version INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (aggregate_id, version)
		);
	`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

type loanStarted struct {
	LoanID uuid.UUID `json:"loan_id"`
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	store := NewEventStore(db)

	loanID := uuid.New()
	data, err := json.Marshal(loanStarted{LoanID: loanID})
	require.NoError(t, err)

	err = store.AppendEvents(context.Background(), loanID, "loan", 0, []Event{
		{EventType: "LoanStarted", EventData: data},
	})
	require.NoError(t, err)

	events, err := store.LoadEvents(context.Background(), loanID, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "LoanStarted", events[0].EventType)
	assert.Equal(t, 1, events[0].Version)

	version, err := store.GetCurrentVersion(context.Background(), loanID)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestAppendDetectsConcurrencyConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	store := NewEventStore(db)

	loanID := uuid.New()
	data, _ := json.Marshal(loanStarted{LoanID: loanID})
	event := Event{EventType: "LoanStarted", EventData: data}

	require.NoError(t, store.AppendEvents(context.Background(), loanID, "loan", 0, []Event{event}))

	// A writer working from the stale version must be rejected.
	err := store.AppendEvents(context.Background(), loanID, "loan", 0, []Event{event})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestAppendRejectsNegativeVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	store := NewEventStore(db)

	err := store.AppendEvents(context.Background(), uuid.New(), "loan", -1, nil)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func BenchmarkAppendEvents(b *testing.B) {
	db := setupTestDB(b)
	defer db.Close()
	store := NewEventStore(db)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		aggregateID := uuid.New()
		data, _ := json.Marshal(loanStarted{LoanID: aggregateID})
		events := []Event{{EventType: "LoanStarted", EventData: data}}
		b.StartTimer()

		if err := store.AppendEvents(context.Background(), aggregateID, "loan", 0, events); err != nil {
			b.Fatalf("AppendEvents failed: %v", err)
		}
	}
}
