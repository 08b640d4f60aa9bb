package events

import "time"

// Tipos de evento publicados pelo ledger-service
const (
	BetCreated = "created"
	BetUpdated = "updated"
	BetDeleted = "deleted"
)

// BetLedgerEvent é publicado no tópico "bet_ledger_events" a cada escrita no ledger.
// Valores monetários trafegam como string decimal (ex: "190.91").
type BetLedgerEvent struct {
	Type          string    `json:"type"` // created | updated | deleted
	BetID         string    `json:"bet_id"`
	OwnerID       string    `json:"owner_id"`
	ResultID      string    `json:"result_id"`
	Odds          int       `json:"odds"`
	AmountWagered string    `json:"amount_wagered"`
	AmountWon     string    `json:"amount_won"`
	DatePlaced    time.Time `json:"date_placed"`
	Ts            time.Time `json:"ts"`
}
