package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/odds"
)

// Summary é o agregado simples de uma listagem
type Summary struct {
	Count         int
	Wins          int
	Losses        int
	Pushes        int
	Pending       int // pending ou resultado sem label
	TotalWagered  decimal.Decimal
	TotalReturned decimal.Decimal
	Net           decimal.Decimal // devolvido - apostado, só apostas liquidadas
}

func Summarize(rows []EnrichedBet) Summary {
	s := Summary{Count: len(rows)}

	for _, r := range rows {
		s.TotalWagered = s.TotalWagered.Add(r.AmountWagered)
		s.TotalReturned = s.TotalReturned.Add(r.AmountWon)

		switch label(r.Result) {
		case odds.ResultWin:
			s.Wins++
		case odds.ResultLoss:
			s.Losses++
		case odds.ResultPush:
			s.Pushes++
		default:
			s.Pending++
			continue
		}
		s.Net = s.Net.Add(r.AmountWon).Sub(r.AmountWagered)
	}

	return s
}
