package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	sbBetMGM     = "sb-betmgm"
	sbDraftKings = "sb-dk"
	teamBills    = "team-bills"
	teamChiefs   = "team-chiefs"
	typeSpread   = "bt-spread"
	typeOU       = "bt-ou"
	typeML       = "bt-ml"
	resWin       = "res-win"
	resLoss      = "res-loss"
	resPush      = "res-push"
	resPending   = "res-pending"
)

type memStore struct {
	mu      sync.Mutex
	seq     int
	bets    map[string]BetRecord
	failErr error
	lists   int
}

func newMemStore() *memStore { return &memStore{bets: map[string]BetRecord{}} }

func (m *memStore) Create(_ context.Context, b *BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.seq++
	b.ID = fmt.Sprintf("bet-%d", m.seq)
	b.CreatedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	m.bets[b.ID] = *b
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	b, ok := m.bets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memStore) List(_ context.Context, p Predicate) ([]BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []BetRecord
	for _, b := range m.bets {
		if p.Matches(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, b *BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if _, ok := m.bets[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = b.UpdatedAt.Add(time.Minute)
	m.bets[b.ID] = *b
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) (*BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	b, ok := m.bets[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.bets, id)
	return &b, nil
}

// memCatalog conta as chamadas de Labels por catálogo pra checar o batching
type memCatalog struct {
	mu      sync.Mutex
	entries map[CatalogKind]map[string]string
	calls   map[CatalogKind]int
	failErr error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		entries: map[CatalogKind]map[string]string{
			KindSportsbook: {sbDraftKings: "DraftKings", sbBetMGM: "BetMGM"},
			KindTeam:       {teamBills: "Buffalo Bills", teamChiefs: "Kansas City Chiefs"},
			KindBetType:    {typeSpread: BetTypeSpread, typeOU: BetTypeOverUnder, typeML: BetTypeMoneyline},
			KindResult:     {resWin: "Win", resLoss: "Loss", resPush: "Push", resPending: "Pending"},
		},
		calls: map[CatalogKind]int{},
	}
}

func (c *memCatalog) Labels(_ context.Context, kind CatalogKind, ids []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[kind]++
	if c.failErr != nil {
		return nil, c.failErr
	}
	out := map[string]string{}
	for _, id := range ids {
		if l, ok := c.entries[kind][id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

func (c *memCatalog) List(_ context.Context, kind CatalogKind) ([]CatalogEntry, error) {
	if c.failErr != nil {
		return nil, c.failErr
	}
	var out []CatalogEntry
	for id, l := range c.entries[kind] {
		out = append(out, CatalogEntry{ID: id, Label: l})
	}
	return out, nil
}

type memUsers map[string]string

func (u memUsers) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := u[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

var errDown = errors.New("connection refused")

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func datePtr(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func spreadPayload() BetPayload {
	return BetPayload{
		SportsbookID:  sbDraftKings,
		TeamID:        teamBills,
		BetTypeID:     typeSpread,
		ResultID:      resWin,
		Line:          decPtr("-4.5"),
		Odds:          decPtr("-110"),
		AmountWagered: decPtr("100.00"),
		DatePlaced:    datePtr("2024-01-14"),
	}
}
