package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

// PostgresRepo grava a trilha de auditoria do ledger (bet_ledger_history)
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// HistoryEntry é uma linha de bet_ledger_history
type HistoryEntry struct {
	BetID         string
	OwnerID       string
	EventType     string
	ResultID      string
	Odds          int
	AmountWagered decimal.Decimal
	AmountWon     decimal.Decimal
	EventTs       sql.NullTime
}

// InsertHistory acrescenta um evento ao histórico. Valores monetários inválidos viram 0.
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.BetLedgerEvent) error {
	const q = `
		INSERT INTO bet_ledger_history
		  (bet_id, owner_id, event_type, result_id, odds, amount_wagered, amount_won, event_ts)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.BetID, e.OwnerID, e.Type, e.ResultID, e.Odds,
		money(e.AmountWagered), money(e.AmountWon), e.Ts,
	)
	return err
}

// History devolve os eventos de uma aposta em ordem cronológica
func (r *PostgresRepo) History(ctx context.Context, betID string) ([]HistoryEntry, error) {
	const q = `
		SELECT bet_id, owner_id, event_type, result_id, odds, amount_wagered, amount_won, event_ts
		FROM bet_ledger_history
		WHERE bet_id = $1
		ORDER BY event_ts, id
	`
	rows, err := r.DB.QueryContext(ctx, q, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.BetID, &h.OwnerID, &h.EventType, &h.ResultID, &h.Odds,
			&h.AmountWagered, &h.AmountWon, &h.EventTs); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
