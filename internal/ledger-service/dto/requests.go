package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

// BetRequest é o corpo de POST /api/bets e PUT /api/bets/{id}.
// No PUT todos os campos são opcionais: o que vier vazio mantém o valor atual.
type BetRequest struct {
	SportsbookID  string           `json:"sportsbookId"`
	TeamID        string           `json:"teamId"`
	BetTypeID     string           `json:"betTypeId"`
	ResultID      string           `json:"resultId"`
	Line          *decimal.Decimal `json:"line,omitempty"`
	Side          string           `json:"side,omitempty"`        // "Over" | "Under"
	Description   string           `json:"description,omitempty"` // formato antigo: "-4.5", "Over 45.5", "ML"
	Odds          *decimal.Decimal `json:"odds"`
	AmountWagered *decimal.Decimal `json:"amountWagered"`
	AmountWon     *decimal.Decimal `json:"amountWon,omitempty"` // ignorado, sempre recalculado
	DatePlaced    string           `json:"datePlaced,omitempty"`  // YYYY-MM-DD
}

// ToPayload converte para o payload do ledger. Só falha com data mal formatada.
func (r BetRequest) ToPayload() (ledger.BetPayload, *ledger.ValidationError) {
	p := ledger.BetPayload{
		SportsbookID:  r.SportsbookID,
		TeamID:        r.TeamID,
		BetTypeID:     r.BetTypeID,
		ResultID:      r.ResultID,
		Line:          r.Line,
		Side:          r.Side,
		Odds:          r.Odds,
		AmountWagered: r.AmountWagered,
		AmountWon:     r.AmountWon,
	}

	// clientes antigos mandam só a descrição
	if p.Line == nil && p.Side == "" && r.Description != "" {
		p.Line, p.Side = ledger.ParseDescription(r.Description)
	}

	if r.DatePlaced != "" {
		d, ok := ledger.ParseDate(r.DatePlaced)
		if !ok {
			return ledger.BetPayload{}, &ledger.ValidationError{Fields: []ledger.FieldError{
				{Field: "datePlaced", Message: "must be a date in YYYY-MM-DD format"},
			}}
		}
		p.DatePlaced = &d
	}

	return p, nil
}
