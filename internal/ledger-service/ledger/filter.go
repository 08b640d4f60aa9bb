package ledger

import (
	"strings"
	"time"
)

// Predicate é o filtro canônico aplicado ao store. Campo nil = sem restrição.
type Predicate struct {
	OwnerID      *string
	From         *time.Time // início do dia inicial
	To           *time.Time // 23:59:59 do dia final
	SportsbookID *string
	TeamID       *string
	BetTypeID    *string
	ResultID     *string
}

// NormalizeFilters transforma os parâmetros crus no predicado canônico.
// Identidade comum sempre fica restrita às próprias apostas; o filtro de dono
// só vale para identidades privilegiadas.
func NormalizeFilters(id Identity, raw Filters) Predicate {
	var p Predicate

	if !id.Privileged {
		owner := id.OwnerID
		p.OwnerID = &owner
	} else {
		p.OwnerID = optional(raw.OwnerID)
	}

	// intervalo parcial é ignorado
	start, okStart := parseDate(raw.StartDate)
	end, okEnd := parseDate(raw.EndDate)
	if okStart && okEnd {
		to := end.Add(24*time.Hour - time.Second)
		p.From, p.To = &start, &to
	}

	p.SportsbookID = optional(raw.SportsbookID)
	p.TeamID = optional(raw.TeamID)
	p.BetTypeID = optional(raw.BetTypeID)
	p.ResultID = optional(raw.ResultID)

	return p
}

// Matches avalia o predicado em memória
func (p Predicate) Matches(b BetRecord) bool {
	if p.OwnerID != nil && b.OwnerID != *p.OwnerID {
		return false
	}
	if p.From != nil && b.DatePlaced.Before(*p.From) {
		return false
	}
	if p.To != nil && b.DatePlaced.After(*p.To) {
		return false
	}
	return eq(p.SportsbookID, b.SportsbookID) &&
		eq(p.TeamID, b.TeamID) &&
		eq(p.BetTypeID, b.BetTypeID) &&
		eq(p.ResultID, b.ResultID)
}

func eq(want *string, got string) bool { return want == nil || *want == got }

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseDate aceita YYYY-MM-DD ou RFC3339; só a data é considerada
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return dateOnly(t), true
	}
	return time.Time{}, false
}

// ParseDate é o mesmo parser usado pelos filtros, exposto pro transporte
func ParseDate(s string) (time.Time, bool) { return parseDate(s) }
