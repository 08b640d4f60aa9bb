package ledger

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// CatalogSource resolve ids de um catálogo em lote. Ids ausentes simplesmente
// não aparecem no mapa.
type CatalogSource interface {
	Labels(ctx context.Context, kind CatalogKind, ids []string) (map[string]string, error)
}

type UserDirectory interface {
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

// Enricher junta os labels dos catálogos (e o username, em visões privilegiadas)
// em cada aposta. Cada catálogo é consultado uma única vez por chamada.
type Enricher struct {
	Catalogs CatalogSource
	Users    UserDirectory
	Log      *zap.Logger
}

func (e Enricher) Enrich(ctx context.Context, records []BetRecord, privileged bool) ([]EnrichedBet, error) {
	out := make([]EnrichedBet, len(records))
	if len(records) == 0 {
		return out, nil
	}

	resolve := func(kind CatalogKind, pick func(BetRecord) string, set func(*EnrichedBet, *string)) error {
		labels, err := e.Catalogs.Labels(ctx, kind, distinct(records, pick))
		if err != nil {
			return storeError("resolve "+string(kind), err)
		}
		for i := range records {
			set(&out[i], e.lookup(labels, string(kind), pick(records[i]), records[i].ID))
		}
		return nil
	}

	for i := range records {
		out[i].BetRecord = records[i]
	}

	if err := resolve(KindSportsbook, func(b BetRecord) string { return b.SportsbookID },
		func(r *EnrichedBet, l *string) { r.SportsbookName = l }); err != nil {
		return nil, err
	}
	if err := resolve(KindTeam, func(b BetRecord) string { return b.TeamID },
		func(r *EnrichedBet, l *string) { r.TeamName = l }); err != nil {
		return nil, err
	}
	if err := resolve(KindBetType, func(b BetRecord) string { return b.BetTypeID },
		func(r *EnrichedBet, l *string) { r.BetType = l }); err != nil {
		return nil, err
	}
	if err := resolve(KindResult, func(b BetRecord) string { return b.ResultID },
		func(r *EnrichedBet, l *string) { r.Result = l }); err != nil {
		return nil, err
	}

	if privileged && e.Users != nil {
		owner := func(b BetRecord) string { return b.OwnerID }
		names, err := e.Users.Usernames(ctx, distinct(records, owner))
		if err != nil {
			return nil, storeError("resolve users", err)
		}
		for i := range records {
			out[i].Username = e.lookup(names, "user", records[i].OwnerID, records[i].ID)
		}
	}

	SortLedger(out)
	return out, nil
}

// lookup devolve nil para referência órfã; a linha continua no resultado
func (e Enricher) lookup(labels map[string]string, kind, id, betID string) *string {
	if l, ok := labels[id]; ok {
		return &l
	}
	if e.Log != nil {
		e.Log.Debug("unresolved reference",
			zap.String("kind", kind),
			zap.String("ref_id", id),
			zap.String("bet_id", betID),
		)
	}
	return nil
}

// SortLedger: data desc, depois sportsbook asc, depois time asc (label ausente primeiro)
func SortLedger(rows []EnrichedBet) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.DatePlaced.Equal(b.DatePlaced) {
			return a.DatePlaced.After(b.DatePlaced)
		}
		if c := compareLabel(a.SportsbookName, b.SportsbookName); c != 0 {
			return c < 0
		}
		return compareLabel(a.TeamName, b.TeamName) < 0
	})
}

func compareLabel(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func distinct(records []BetRecord, pick func(BetRecord) string) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		id := pick(r)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
