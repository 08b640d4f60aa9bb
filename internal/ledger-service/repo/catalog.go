package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

var ErrUnknownUser = errors.New("unknown user")

var catalogTables = map[ledger.CatalogKind]string{
	ledger.KindSportsbook: "sportsbooks",
	ledger.KindTeam:       "teams",
	ledger.KindBetType:    "bet_types",
	ledger.KindResult:     "results",
}

// Catalogs lê os catálogos de referência (somente leitura)
type Catalogs struct{ db *sql.DB }

func NewCatalogs(db *sql.DB) *Catalogs { return &Catalogs{db: db} }

func (c *Catalogs) List(ctx context.Context, kind ledger.CatalogKind) ([]ledger.CatalogEntry, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return nil, ledger.ErrUnknownKind
	}

	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, label FROM %s ORDER BY label`, table))
	if err != nil {
		return nil, &ledger.StoreFailure{Op: "list " + table, Err: err}
	}
	defer rows.Close()

	out := []ledger.CatalogEntry{}
	for rows.Next() {
		var e ledger.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Label); err != nil {
			return nil, &ledger.StoreFailure{Op: "scan " + table, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StoreFailure{Op: "list " + table, Err: err}
	}
	return out, nil
}

// Labels resolve vários ids numa única query (id = ANY($1))
func (c *Catalogs) Labels(ctx context.Context, kind ledger.CatalogKind, ids []string) (map[string]string, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return nil, ledger.ErrUnknownKind
	}
	return queryLabels(ctx, c.db, fmt.Sprintf(`SELECT id, label FROM %s WHERE id = ANY($1)`, table), ids)
}

// Users é o diretório de usuários: username para visões de admin e flag de privilégio
type Users struct{ db *sql.DB }

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

func (u *Users) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	return queryLabels(ctx, u.db, `SELECT id, username FROM users WHERE id = ANY($1)`, ids)
}

// Identify monta a identidade de quem chama; is_admin vira Privileged
func (u *Users) Identify(ctx context.Context, userID string) (ledger.Identity, error) {
	var admin bool
	err := u.db.QueryRowContext(ctx, `SELECT is_admin FROM users WHERE id=$1`, userID).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Identity{}, ErrUnknownUser
	}
	if err != nil {
		return ledger.Identity{}, &ledger.StoreFailure{Op: "identify user", Err: err}
	}
	return ledger.Identity{OwnerID: userID, Privileged: admin}, nil
}

func queryLabels(ctx context.Context, db *sql.DB, query string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, &ledger.StoreFailure{Op: "resolve labels", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, &ledger.StoreFailure{Op: "scan labels", Err: err}
		}
		out[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StoreFailure{Op: "resolve labels", Err: err}
	}
	return out, nil
}
