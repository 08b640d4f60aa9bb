package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

// BetResponse: valores monetários como string com 2 casas ("190.91")
type BetResponse struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId"`
	SportsbookID  string           `json:"sportsbookId"`
	TeamID        string           `json:"teamId"`
	BetTypeID     string           `json:"betTypeId"`
	ResultID      string           `json:"resultId"`
	Description   string           `json:"description"`
	Line          *decimal.Decimal `json:"line"`
	Side          string           `json:"side,omitempty"`
	Odds          int              `json:"odds"`
	AmountWagered string           `json:"amountWagered"`
	AmountWon     string           `json:"amountWon"`
	DatePlaced    string           `json:"datePlaced"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func NewBetResponse(b *ledger.BetRecord) BetResponse {
	return BetResponse{
		ID:            b.ID,
		OwnerID:       b.OwnerID,
		SportsbookID:  b.SportsbookID,
		TeamID:        b.TeamID,
		BetTypeID:     b.BetTypeID,
		ResultID:      b.ResultID,
		Description:   b.Description,
		Line:          b.Line,
		Side:          b.Side,
		Odds:          b.Odds,
		AmountWagered: b.AmountWagered.StringFixed(2),
		AmountWon:     b.AmountWon.StringFixed(2),
		DatePlaced:    b.DatePlaced.Format(time.DateOnly),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// LedgerRow é a linha da listagem; label null = referência não encontrada
type LedgerRow struct {
	BetResponse
	SportsbookName *string `json:"sportsbookName"`
	TeamName       *string `json:"teamName"`
	BetType        *string `json:"betType"`
	Result         *string `json:"result"`
	Username       *string `json:"username,omitempty"`
}

func NewLedgerRows(rows []ledger.EnrichedBet) []LedgerRow {
	out := make([]LedgerRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		out = append(out, LedgerRow{
			BetResponse:    NewBetResponse(&r.BetRecord),
			SportsbookName: r.SportsbookName,
			TeamName:       r.TeamName,
			BetType:        r.BetType,
			Result:         r.Result,
			Username:       r.Username,
		})
	}
	return out
}

type DeleteBetResponse struct {
	Message string      `json:"message"`
	Bet     BetResponse `json:"bet"`
}

type SummaryResponse struct {
	Count         int    `json:"count"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Pushes        int    `json:"pushes"`
	Pending       int    `json:"pending"`
	TotalWagered  string `json:"totalWagered"`
	TotalReturned string `json:"totalReturned"`
	Net           string `json:"net"`
}

func NewSummaryResponse(s ledger.Summary) SummaryResponse {
	return SummaryResponse{
		Count:         s.Count,
		Wins:          s.Wins,
		Losses:        s.Losses,
		Pushes:        s.Pushes,
		Pending:       s.Pending,
		TotalWagered:  s.TotalWagered.StringFixed(2),
		TotalReturned: s.TotalReturned.StringFixed(2),
		Net:           s.Net.StringFixed(2),
	}
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []ledger.FieldError `json:"fields,omitempty"`
}
