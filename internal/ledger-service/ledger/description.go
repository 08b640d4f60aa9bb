package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// labels do catálogo de tipos de aposta
const (
	BetTypeSpread    = "Spread"
	BetTypeOverUnder = "Over/Under"
	BetTypeMoneyline = "Moneyline"

	SideOver  = "Over"
	SideUnder = "Under"

	MoneylineMarker = "ML"
)

// DeriveDescription monta a descrição canônica a partir do tipo e da linha.
// Tipo desconhecido (ou linha faltando) gera "", e a validação bloqueia o envio.
func DeriveDescription(betType string, line *decimal.Decimal, side string) string {
	switch betType {
	case BetTypeSpread:
		if line == nil {
			return ""
		}
		return FormatLine(*line)
	case BetTypeOverUnder:
		if line == nil || (side != SideOver && side != SideUnder) {
			return ""
		}
		return side + " " + line.StringFixed(1)
	case BetTypeMoneyline:
		return MoneylineMarker
	default:
		return ""
	}
}

// FormatLine renderiza o spread com sinal: -4.5, +9.5
func FormatLine(line decimal.Decimal) string {
	s := line.StringFixed(1)
	if line.IsPositive() {
		return "+" + s
	}
	return s
}

// ParseDescription reconstrói linha e lado de uma descrição.
// O que não for Over/Under nem ML é tratado como spread.
func ParseDescription(desc string) (*decimal.Decimal, string) {
	desc = strings.TrimSpace(desc)
	if desc == "" || desc == MoneylineMarker {
		return nil, ""
	}

	for _, side := range []string{SideOver, SideUnder} {
		if rest, ok := strings.CutPrefix(desc, side+" "); ok {
			return parseLine(rest), side
		}
	}

	return parseLine(desc), ""
}

func parseLine(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "+"))
	if err != nil {
		return nil
	}
	return &d
}

// fillLineFields completa linha/lado de registros antigos que só têm a descrição
func (b *BetRecord) fillLineFields() {
	if b.Line != nil || b.Side != "" {
		return
	}
	b.Line, b.Side = ParseDescription(b.Description)
}
