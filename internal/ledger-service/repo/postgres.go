package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

const betColumns = `id, owner_id, sportsbook_id, team_id, bet_type_id, result_id, description,
	line, side, odds, amount_wagered, amount_won, date_placed, created_at, updated_at`

// Postgres implementa o ledger.Store sobre a tabela bets.
// Toda operação é um único comando SQL.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere a aposta; gera o id quando vazio e preenche created_at/updated_at
func (p *Postgres) Create(ctx context.Context, b *ledger.BetRecord) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO bets (id,owner_id,sportsbook_id,team_id,bet_type_id,result_id,description,
			line,side,odds,amount_wagered,amount_won,date_placed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		b.ID, b.OwnerID, b.SportsbookID, b.TeamID, b.BetTypeID, b.ResultID, b.Description,
		nullLine(b.Line), b.Side, b.Odds, b.AmountWagered, b.AmountWon, b.DatePlaced.Format(time.DateOnly),
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return &ledger.StoreFailure{Op: "insert bet", Err: err}
	}
	return nil
}

// Get busca uma aposta pelo id
func (p *Postgres) Get(ctx context.Context, id string) (*ledger.BetRecord, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, id)
	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, &ledger.StoreFailure{Op: "get bet", Err: err}
	}
	return b, nil
}

// List aplica o predicado como WHERE dinâmico
func (p *Postgres) List(ctx context.Context, pred ledger.Predicate) ([]ledger.BetRecord, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE 1=1`
	args := []any{}
	argPos := 1

	eq := func(col string, v *string) {
		if v == nil {
			return
		}
		query += fmt.Sprintf(" AND %s = $%d", col, argPos)
		args = append(args, *v)
		argPos++
	}

	eq("owner_id", pred.OwnerID)
	eq("sportsbook_id", pred.SportsbookID)
	eq("team_id", pred.TeamID)
	eq("bet_type_id", pred.BetTypeID)
	eq("result_id", pred.ResultID)

	// date_placed é DATE: compara só a parte de data dos limites
	if pred.From != nil && pred.To != nil {
		query += fmt.Sprintf(" AND date_placed BETWEEN $%d::date AND $%d::date", argPos, argPos+1)
		args = append(args, pred.From.Format(time.DateOnly), pred.To.Format(time.DateOnly))
	}

	query += " ORDER BY date_placed DESC, created_at DESC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StoreFailure{Op: "list bets", Err: err}
	}
	defer rows.Close()

	var out []ledger.BetRecord
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, &ledger.StoreFailure{Op: "scan bet", Err: err}
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StoreFailure{Op: "list bets", Err: err}
	}
	return out, nil
}

// Update grava os campos editáveis; dono e referências fixas não são tocados
func (p *Postgres) Update(ctx context.Context, b *ledger.BetRecord) error {
	err := p.db.QueryRowContext(ctx, `
		UPDATE bets
		SET result_id=$2, description=$3, line=$4, side=$5, odds=$6,
			amount_wagered=$7, amount_won=$8, date_placed=$9, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at`,
		b.ID, b.ResultID, b.Description, nullLine(b.Line), b.Side, b.Odds,
		b.AmountWagered, b.AmountWon, b.DatePlaced.Format(time.DateOnly),
	).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrNotFound
	}
	if err != nil {
		return &ledger.StoreFailure{Op: "update bet", Err: err}
	}
	return nil
}

// Delete remove e devolve a linha apagada
func (p *Postgres) Delete(ctx context.Context, id string) (*ledger.BetRecord, error) {
	row := p.db.QueryRowContext(ctx, `DELETE FROM bets WHERE id=$1 RETURNING `+betColumns, id)
	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, &ledger.StoreFailure{Op: "delete bet", Err: err}
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(s rowScanner) (*ledger.BetRecord, error) {
	var (
		b    ledger.BetRecord
		line decimal.NullDecimal
	)
	err := s.Scan(
		&b.ID, &b.OwnerID, &b.SportsbookID, &b.TeamID, &b.BetTypeID, &b.ResultID, &b.Description,
		&line, &b.Side, &b.Odds, &b.AmountWagered, &b.AmountWon, &b.DatePlaced, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if line.Valid {
		l := line.Decimal
		b.Line = &l
	}
	y, m, d := b.DatePlaced.Date()
	b.DatePlaced = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &b, nil
}

func nullLine(l *decimal.Decimal) decimal.NullDecimal {
	if l == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *l, Valid: true}
}
