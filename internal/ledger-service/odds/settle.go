package odds

import "github.com/shopspring/decimal"

// Labels do catálogo de resultados que afetam a liquidação
const (
	ResultWin     = "Win"
	ResultLoss    = "Loss"
	ResultPush    = "Push"
	ResultPending = "Pending"
)

var hundred = decimal.NewFromInt(100)

// Settle calcula o valor devolvido ao apostador (stake + lucro) a partir do label
// do resultado, da odd americana e do valor apostado.
//
//	Win, odd >= 0: wager + wager*(odd/100)
//	Win, odd <  0: wager + wager*(100/|odd|)
//	Push:          wager
//	Loss/outros:   0
//
// O resultado é arredondado em 2 casas (half-up; wager nunca é negativo).
func Settle(resultLabel string, american int, wager decimal.Decimal) decimal.Decimal {
	switch resultLabel {
	case ResultWin:
		return wager.Add(Profit(american, wager)).Round(2)
	case ResultPush:
		return wager.Round(2)
	default:
		return decimal.Zero
	}
}

// Profit retorna o lucro bruto (sem arredondamento) de uma aposta vencedora
func Profit(american int, wager decimal.Decimal) decimal.Decimal {
	odd := decimal.NewFromInt(int64(american))
	if american >= 0 {
		return wager.Mul(odd).Div(hundred)
	}
	return wager.Mul(hundred).Div(odd.Abs())
}
