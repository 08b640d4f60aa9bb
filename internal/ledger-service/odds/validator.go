package odds

import "github.com/shopspring/decimal"

var (
	minPositiveOdds = decimal.NewFromInt(100)
	// -100 a -104 não são aceitas
	maxNegativeOdds = decimal.NewFromInt(-105)
	halfPoint       = decimal.New(5, -1)
)

// ValidOdds: inteira, diferente de zero e >= 100 ou <= -105
func ValidOdds(v decimal.Decimal) bool {
	if v.IsZero() || !v.IsInteger() {
		return false
	}
	return v.GreaterThanOrEqual(minPositiveOdds) || v.LessThanOrEqual(maxNegativeOdds)
}

// ValidLine valida linhas de spread e de over/under: precisam terminar em .5
// (ex: 4.5, -9.5) e ter módulo >= 0.5
func ValidLine(v decimal.Decimal) bool {
	if v.IsZero() {
		return false
	}
	abs := v.Abs()
	frac := abs.Sub(abs.Floor())
	return frac.Equal(halfPoint) && abs.GreaterThanOrEqual(halfPoint)
}
