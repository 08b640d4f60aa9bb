package producer

import (
	"time"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

// LedgerEvent monta o evento publicado após cada escrita
func LedgerEvent(typ string, b *ledger.BetRecord) events.BetLedgerEvent {
	return events.BetLedgerEvent{
		Type:          typ,
		BetID:         b.ID,
		OwnerID:       b.OwnerID,
		ResultID:      b.ResultID,
		Odds:          b.Odds,
		AmountWagered: b.AmountWagered.StringFixed(2),
		AmountWon:     b.AmountWon.StringFixed(2),
		DatePlaced:    b.DatePlaced,
		Ts:            time.Now().UTC(),
	}
}
