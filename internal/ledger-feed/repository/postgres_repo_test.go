package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/db/testutil"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

func TestInsertHistory_Mock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bet_ledger_history").
		WithArgs("bet-1", "u-1", events.BetUpdated, "res-win", -110,
			decimal.RequireFromString("100"), decimal.Zero, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepo(db)
	err = repo.InsertHistory(context.Background(), events.BetLedgerEvent{
		Type:          events.BetUpdated,
		BetID:         "bet-1",
		OwnerID:       "u-1",
		ResultID:      "res-win",
		Odds:          -110,
		AmountWagered: "100.00",
		AmountWon:     "garbage",
		Ts:            ts,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_Integration(t *testing.T) {
	tdb := testutil.SetupTestDatabase(t)
	repo := NewPostgresRepo(tdb.DB)
	ctx := context.Background()

	base := time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC)
	for i, typ := range []string{events.BetCreated, events.BetUpdated, events.BetDeleted} {
		require.NoError(t, repo.InsertHistory(ctx, events.BetLedgerEvent{
			Type:          typ,
			BetID:         "bet-1",
			OwnerID:       "u-1",
			Odds:          150,
			AmountWagered: "100.00",
			AmountWon:     "250.00",
			Ts:            base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.InsertHistory(ctx, events.BetLedgerEvent{
		Type: events.BetCreated, BetID: "bet-2", OwnerID: "u-2", Ts: base,
	}))

	got, err := repo.History(ctx, "bet-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, events.BetCreated, got[0].EventType)
	assert.Equal(t, events.BetDeleted, got[2].EventType)
	assert.True(t, got[1].AmountWon.Equal(decimal.RequireFromString("250")))
	assert.True(t, got[0].EventTs.Time.Equal(base))
}
