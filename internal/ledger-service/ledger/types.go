package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetRecord é uma aposta registrada no ledger
type BetRecord struct {
	ID            string
	OwnerID       string
	SportsbookID  string
	TeamID        string
	BetTypeID     string
	ResultID      string
	Description   string
	Line          *decimal.Decimal // spread ou linha de over/under; nil em moneyline
	Side          string           // "Over" | "Under" | ""
	Odds          int              // odd americana
	AmountWagered decimal.Decimal
	AmountWon     decimal.Decimal // sempre calculado por odds.Settle
	DatePlaced    time.Time       // só a data importa (UTC, 00:00)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CatalogKind string

const (
	KindSportsbook CatalogKind = "sportsbook"
	KindTeam       CatalogKind = "team"
	KindBetType    CatalogKind = "betType"
	KindResult     CatalogKind = "result"
)

// ParseKind valida o nome do catálogo recebido na rota
func ParseKind(s string) (CatalogKind, bool) {
	switch k := CatalogKind(s); k {
	case KindSportsbook, KindTeam, KindBetType, KindResult:
		return k, true
	}
	return "", false
}

type CatalogEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Identity é quem está agindo na requisição
type Identity struct {
	OwnerID    string
	Privileged bool
}

// canAccess: dono da aposta ou identidade privilegiada
func (id Identity) canAccess(b *BetRecord) bool {
	return id.Privileged || b.OwnerID == id.OwnerID
}

// EnrichedBet é a linha pronta pra exibição. Label nil = referência não resolvida.
type EnrichedBet struct {
	BetRecord
	SportsbookName *string
	TeamName       *string
	BetType        *string
	Result         *string
	Username       *string // só em visões privilegiadas
}

// Filters são os parâmetros crus da listagem, todos opcionais
type Filters struct {
	StartDate    string
	EndDate      string
	SportsbookID string
	TeamID       string
	BetTypeID    string
	ResultID     string
	OwnerID      string // só respeitado para identidades privilegiadas
}

// BetPayload é o candidato de escrita (create/update).
// AmountWon é aceito mas ignorado: o valor é sempre recalculado.
type BetPayload struct {
	SportsbookID  string           `json:"sportsbookId" validate:"required"`
	TeamID        string           `json:"teamId" validate:"required"`
	BetTypeID     string           `json:"betTypeId" validate:"required"`
	ResultID      string           `json:"resultId" validate:"required"`
	Line          *decimal.Decimal `json:"line"`
	Side          string           `json:"side" validate:"omitempty,oneof=Over Under"`
	Odds          *decimal.Decimal `json:"odds" validate:"required"`
	AmountWagered *decimal.Decimal `json:"amountWagered" validate:"required"`
	AmountWon     *decimal.Decimal `json:"amountWon"`
	DatePlaced    *time.Time       `json:"datePlaced" validate:"required"`
}

// References guarda os labels resolvidos das referências de um payload
type References struct {
	Sportsbook *string
	Team       *string
	BetType    *string
	Result     *string
}

func label(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
