package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/odds"
)

// Store é o armazenamento durável das apostas. Cada operação é um único
// comando atômico; Get/Update/Delete devolvem ErrNotFound quando o id não existe.
type Store interface {
	Create(ctx context.Context, b *BetRecord) error
	Get(ctx context.Context, id string) (*BetRecord, error)
	List(ctx context.Context, p Predicate) ([]BetRecord, error)
	Update(ctx context.Context, b *BetRecord) error
	Delete(ctx context.Context, id string) (*BetRecord, error)
}

// Catalog lista e resolve os catálogos de referência
type Catalog interface {
	CatalogSource
	List(ctx context.Context, kind CatalogKind) ([]CatalogEntry, error)
}

type Service struct {
	store    Store
	catalog  Catalog
	enricher Enricher
	now      func() time.Time
}

func NewService(log *zap.Logger, store Store, catalog Catalog, users UserDirectory) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		enricher: Enricher{Catalogs: catalog, Users: users, Log: log},
		now:      time.Now,
	}
}

// ListCatalog devolve o catálogo ordenado por label
func (s *Service) ListCatalog(ctx context.Context, kind CatalogKind) ([]CatalogEntry, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return nil, ErrUnknownKind
	}
	entries, err := s.catalog.List(ctx, kind)
	if err != nil {
		return nil, storeError("list catalog", err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })
	return entries, nil
}

// CreateBet valida, deriva descrição e valor devolvido e persiste
func (s *Service) CreateBet(ctx context.Context, id Identity, p BetPayload) (*BetRecord, error) {
	if p.DatePlaced == nil {
		today := dateOnly(s.now().UTC())
		p.DatePlaced = &today
	}

	refs, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if verr := Validate(p, refs); verr != nil {
		return nil, verr
	}

	b := &BetRecord{
		OwnerID:      id.OwnerID,
		SportsbookID: p.SportsbookID,
		TeamID:       p.TeamID,
		BetTypeID:    p.BetTypeID,
	}
	apply(b, p, refs)

	if err := s.store.Create(ctx, b); err != nil {
		return nil, storeError("create", err)
	}
	return b, nil
}

// GetBet esconde apostas de outros donos como ErrNotFound
func (s *Service) GetBet(ctx context.Context, id Identity, betID string) (*BetRecord, error) {
	b, err := s.store.Get(ctx, betID)
	if err != nil {
		return nil, storeError("get", err)
	}
	if !id.canAccess(b) {
		return nil, ErrNotFound
	}
	b.fillLineFields()
	return b, nil
}

// UpdateBet aplica o payload sobre o registro atual. Dono, sportsbook, time e
// tipo de aposta não mudam; o resto é revalidado e recalculado.
func (s *Service) UpdateBet(ctx context.Context, id Identity, betID string, p BetPayload) (*BetRecord, error) {
	cur, err := s.store.Get(ctx, betID)
	if err != nil {
		return nil, storeError("get", err)
	}
	if !id.canAccess(cur) {
		return nil, ErrForbidden
	}
	cur.fillLineFields()

	verr := &ValidationError{}
	immutable(verr, "sportsbookId", p.SportsbookID, cur.SportsbookID)
	immutable(verr, "teamId", p.TeamID, cur.TeamID)
	immutable(verr, "betTypeId", p.BetTypeID, cur.BetTypeID)
	if verr.orNil() != nil {
		return nil, verr
	}

	merged := merge(cur, p)
	refs, err := s.resolve(ctx, merged)
	if err != nil {
		return nil, err
	}
	if verr := Validate(merged, refs); verr != nil {
		return nil, verr
	}

	next := *cur
	apply(&next, merged, refs)

	if err := s.store.Update(ctx, &next); err != nil {
		return nil, storeError("update", err)
	}
	return &next, nil
}

// DeleteBet remove e devolve o registro apagado
func (s *Service) DeleteBet(ctx context.Context, id Identity, betID string) (*BetRecord, error) {
	cur, err := s.store.Get(ctx, betID)
	if err != nil {
		return nil, storeError("get", err)
	}
	if !id.canAccess(cur) {
		return nil, ErrForbidden
	}

	deleted, err := s.store.Delete(ctx, betID)
	if err != nil {
		return nil, storeError("delete", err)
	}
	return deleted, nil
}

// ListBets: normaliza filtros, consulta o store e enriquece/ordena o resultado
func (s *Service) ListBets(ctx context.Context, id Identity, raw Filters) ([]EnrichedBet, error) {
	pred := NormalizeFilters(id, raw)

	records, err := s.store.List(ctx, pred)
	if err != nil {
		return nil, storeError("list", err)
	}

	return s.enricher.Enrich(ctx, records, id.Privileged)
}

// resolve busca o label de cada referência preenchida do payload
func (s *Service) resolve(ctx context.Context, p BetPayload) (References, error) {
	var refs References
	lookups := []struct {
		kind CatalogKind
		id   string
		dst  **string
	}{
		{KindSportsbook, p.SportsbookID, &refs.Sportsbook},
		{KindTeam, p.TeamID, &refs.Team},
		{KindBetType, p.BetTypeID, &refs.BetType},
		{KindResult, p.ResultID, &refs.Result},
	}

	for _, l := range lookups {
		if l.id == "" {
			continue
		}
		labels, err := s.catalog.Labels(ctx, l.kind, []string{l.id})
		if err != nil {
			return References{}, storeError("resolve "+string(l.kind), err)
		}
		if v, ok := labels[l.id]; ok {
			*l.dst = &v
		}
	}
	return refs, nil
}

// apply copia os campos editáveis já validados e recalcula descrição e valor devolvido
func apply(b *BetRecord, p BetPayload, refs References) {
	betType := label(refs.BetType)

	b.ResultID = p.ResultID
	b.Odds = int(p.Odds.IntPart())
	b.AmountWagered = p.AmountWagered.Round(2)
	b.DatePlaced = dateOnly(*p.DatePlaced)

	switch betType {
	case BetTypeSpread:
		line := p.Line.Round(1)
		b.Line, b.Side = &line, ""
	case BetTypeOverUnder:
		line := p.Line.Round(1)
		b.Line, b.Side = &line, p.Side
	default:
		b.Line, b.Side = nil, ""
	}

	b.Description = DeriveDescription(betType, b.Line, b.Side)
	b.AmountWon = odds.Settle(label(refs.Result), b.Odds, b.AmountWagered)
}

// merge completa o payload parcial com os valores atuais do registro
func merge(cur *BetRecord, p BetPayload) BetPayload {
	out := BetPayload{
		SportsbookID:  cur.SportsbookID,
		TeamID:        cur.TeamID,
		BetTypeID:     cur.BetTypeID,
		ResultID:      p.ResultID,
		Line:          p.Line,
		Side:          p.Side,
		Odds:          p.Odds,
		AmountWagered: p.AmountWagered,
		DatePlaced:    p.DatePlaced,
	}
	if out.ResultID == "" {
		out.ResultID = cur.ResultID
	}
	if out.Line == nil && cur.Line != nil {
		line := *cur.Line
		out.Line = &line
	}
	if out.Side == "" {
		out.Side = cur.Side
	}
	if out.Odds == nil {
		o := decimal.NewFromInt(int64(cur.Odds))
		out.Odds = &o
	}
	if out.AmountWagered == nil {
		w := cur.AmountWagered
		out.AmountWagered = &w
	}
	if out.DatePlaced == nil {
		d := cur.DatePlaced
		out.DatePlaced = &d
	}
	return out
}

func immutable(verr *ValidationError, field, got, want string) {
	if got != "" && got != want {
		verr.add(field, "cannot be changed after the bet is placed")
	}
}
