package audit

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"tiempos/database"
	"tiempos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tiempos_audit_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		log.Fatalf("Could not start postgres container: %v", err)
	}

	dbURL, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %v", err)
	}

	testDB, err = gorm.Open(gormpg.Open(dbURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not open database connection: %v", err)
	}
	if err := database.AutoMigrate(testDB); err != nil {
		log.Fatalf("Could not migrate test database: %v", err)
	}

	code := m.Run()

	if err := pgContainer.Terminate(ctx); err != nil {
		log.Fatalf("Error terminating container: %v", err)
	}
	os.Exit(code)
}

func resetEvents(t *testing.T) {
	t.Helper()
	if err := testDB.Exec("TRUNCATE audit_events RESTART IDENTITY").Error; err != nil {
		t.Fatalf("failed to reset audit_events: %v", err)
	}
}

func appendEvent(t *testing.T, e Entry) *models.AuditEvent {
	t.Helper()
	var ev *models.AuditEvent
	err := testDB.Transaction(func(tx *gorm.DB) error {
		var aerr error
		ev, aerr = Append(tx, e)
		return aerr
	})
	require.NoError(t, err)
	return ev
}

func TestAppendChainsEvents(t *testing.T) {
	resetEvents(t)

	first := appendEvent(t, Entry{
		ActorID:        "admin",
		Action:         ActionAccountCreated,
		Severity:       models.SeverityInfo,
		TargetResource: "account:AC-1",
		Metadata:       map[string]any{"display_name": "counter"},
	})
	assert.Empty(t, first.PreviousHash)
	assert.NotEmpty(t, first.Hash)
	assert.NotEmpty(t, first.EventID)

	second := appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionBetPlaced,
		Severity:       models.SeverityInfo,
		TargetResource: "bet:TK-1",
		Metadata:       map[string]any{"amount": 1000},
	})
	assert.Equal(t, first.Hash, second.PreviousHash)
	assert.NotEqual(t, first.Hash, second.Hash)

	n, err := Verify(testDB)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestConcurrentAppendsKeepChainIntact(t *testing.T) {
	resetEvents(t)

	// Writers that share no other lock meet only at the chain. Starting from
	// an empty table also covers two concurrent first appends.
	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = testDB.Transaction(func(tx *gorm.DB) error {
				_, aerr := Append(tx, Entry{
					ActorID:        "op-1",
					Action:         ActionBetPlaced,
					Severity:       models.SeverityInfo,
					TargetResource: "bet:TK-C",
					Metadata:       map[string]any{"writer": i},
				})
				return aerr
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	n, err := Verify(testDB)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), n)

	// Every event links to a distinct predecessor: no forks.
	var events []models.AuditEvent
	require.NoError(t, testDB.Order("id ASC").Find(&events).Error)
	seen := map[string]bool{}
	for _, ev := range events {
		assert.False(t, seen[ev.PreviousHash], "previous hash reused: %s", ev.PreviousHash)
		seen[ev.PreviousHash] = true
	}
}

func TestVerifyEmptyChain(t *testing.T) {
	resetEvents(t)

	n, err := Verify(testDB)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVerifyDetectsTamperedPayload(t *testing.T) {
	resetEvents(t)

	appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionBetPlaced,
		Severity:       models.SeverityInfo,
		TargetResource: "bet:TK-1",
		Metadata:       map[string]any{"amount": 1000},
	})
	victim := appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionBetPlaced,
		Severity:       models.SeverityInfo,
		TargetResource: "bet:TK-2",
		Metadata:       map[string]any{"amount": 2000},
	})
	appendEvent(t, Entry{
		ActorID:        "admin",
		Action:         ActionSettlementCompleted,
		Severity:       models.SeverityInfo,
		TargetResource: "draw:midday:2026-08-30",
		Metadata:       map[string]any{"processed": 2},
	})

	// Rewrite history behind the chain's back.
	require.NoError(t, testDB.Exec(
		"UPDATE audit_events SET actor_id = 'intruder' WHERE event_id = ?",
		victim.EventID,
	).Error)

	_, err := Verify(testDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), victim.EventID)
}

func TestVerifyDetectsTimestampRewrite(t *testing.T) {
	resetEvents(t)

	victim := appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionDeposit,
		Severity:       models.SeverityInfo,
		TargetResource: "account:AC-1",
	})

	require.NoError(t, testDB.Exec(
		"UPDATE audit_events SET created_at = created_at - interval '1 hour' WHERE event_id = ?",
		victim.EventID,
	).Error)

	_, err := Verify(testDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), victim.EventID)
}

func TestVerifyDetectsSpliceAttempt(t *testing.T) {
	resetEvents(t)

	a := appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionDeposit,
		Severity:       models.SeverityInfo,
		TargetResource: "account:AC-1",
	})
	appendEvent(t, Entry{
		ActorID:        "op-1",
		Action:         ActionWithdraw,
		Severity:       models.SeverityInfo,
		TargetResource: "account:AC-1",
	})

	// A recomputed hash on the first event still breaks the link to the
	// second, whose previous_hash no longer matches.
	forged := *a
	forged.ActorID = "intruder"
	forged.Hash = chainHash("", &forged)
	require.NoError(t, testDB.Exec(
		"UPDATE audit_events SET actor_id = ?, hash = ? WHERE event_id = ?",
		forged.ActorID, forged.Hash, a.EventID,
	).Error)

	_, err := Verify(testDB)
	require.Error(t, err)
}

func TestChainHashDeterministic(t *testing.T) {
	ev := models.AuditEvent{
		EventID:        "fixed-id",
		ActorID:        "op-1",
		Action:         ActionBetPlaced,
		Severity:       models.SeverityInfo,
		TargetResource: "bet:TK-1",
		Metadata:       []byte(`{"amount":1000}`),
	}
	ev.CreatedAt = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	h1 := chainHash("prev", &ev)
	h2 := chainHash("prev", &ev)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	assert.NotEqual(t, h1, chainHash("other", &ev))

	mutated := ev
	mutated.Action = ActionBetRefunded
	assert.NotEqual(t, h1, chainHash("prev", &mutated))

	shifted := ev
	shifted.CreatedAt = ev.CreatedAt.Add(time.Hour)
	assert.NotEqual(t, h1, chainHash("prev", &shifted))
}
