package ledger

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/odds"
)

var validate = newValidator()

// limites das colunas: odds INTEGER, money NUMERIC(12,2), line NUMERIC(6,1)
var (
	minOdds  = decimal.NewFromInt(math.MinInt32)
	maxOdds  = decimal.NewFromInt(math.MaxInt32)
	maxWager = decimal.New(1, 10)
	maxLine  = decimal.New(1, 5)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// mensagens usam o nome do campo JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checa completude e formato do payload já com as referências resolvidas.
// Não altera o payload.
func Validate(p BetPayload, refs References) *ValidationError {
	verr := &ValidationError{}

	if err := validate.Struct(p); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			verr.add("payload", err.Error())
			return verr
		}
		for _, fe := range fes {
			verr.add(fe.Field(), tagMessage(fe))
		}
	}

	if p.Odds != nil {
		if !odds.ValidOdds(*p.Odds) {
			verr.add("odds", "must be a whole number >= 100 or <= -105")
		} else if p.Odds.LessThan(minOdds) || p.Odds.GreaterThan(maxOdds) {
			verr.add("odds", "is out of range")
		}
	}
	if p.AmountWagered != nil {
		if p.AmountWagered.IsNegative() {
			verr.add("amountWagered", "must not be negative")
		} else if p.AmountWagered.Round(2).GreaterThanOrEqual(maxWager) {
			verr.add("amountWagered", "must be less than "+maxWager.String())
		}
	}

	checkRef(verr, "sportsbookId", "sportsbook", p.SportsbookID, refs.Sportsbook)
	checkRef(verr, "teamId", "team", p.TeamID, refs.Team)
	checkRef(verr, "resultId", "result", p.ResultID, refs.Result)
	if checkRef(verr, "betTypeId", "bet type", p.BetTypeID, refs.BetType) {
		validateLine(verr, *refs.BetType, p)
	}

	return verr.orNil()
}

// checkRef reporta id preenchido que não existe no catálogo; true quando resolveu
func checkRef(verr *ValidationError, field, what, id string, resolved *string) bool {
	if id == "" {
		return false
	}
	if resolved == nil {
		verr.add(field, "unknown "+what)
		return false
	}
	return true
}

func validateLine(verr *ValidationError, betType string, p BetPayload) {
	switch betType {
	case BetTypeSpread:
		if p.Line == nil {
			verr.add("line", "is required for spread bets")
		} else {
			checkLine(verr, *p.Line)
		}
	case BetTypeOverUnder:
		if p.Line == nil {
			verr.add("line", "is required for over/under bets")
		} else {
			checkLine(verr, *p.Line)
		}
		if p.Side == "" {
			verr.add("side", "is required for over/under bets")
		}
	case BetTypeMoneyline:
	default:
		verr.add("betTypeId", "unsupported bet type "+betType)
	}
}

func checkLine(verr *ValidationError, line decimal.Decimal) {
	switch {
	case !odds.ValidLine(line):
		verr.add("line", "must be a non-zero value ending in .5")
	case line.Abs().GreaterThanOrEqual(maxLine):
		verr.add("line", "must be less than "+maxLine.String()+" in absolute value")
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
