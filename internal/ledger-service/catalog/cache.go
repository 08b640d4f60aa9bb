package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

var kinds = []ledger.CatalogKind{ledger.KindSportsbook, ledger.KindTeam, ledger.KindBetType, ledger.KindResult}

// Cache guarda no Redis o snapshot completo de cada catálogo (JSON + TTL).
// Redis fora do ar não derruba a leitura: cai direto na fonte.
type Cache struct {
	R      *redis.Client
	Source ledger.Catalog
	TTL    time.Duration
	Log    *zap.Logger
}

func New(r *redis.Client, src ledger.Catalog, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{R: r, Source: src, TTL: ttl, Log: log}
}

func keyCatalog(kind ledger.CatalogKind) string { return "ledger:catalog:" + string(kind) }

// List devolve o snapshot do catálogo, buscando na fonte em caso de miss
func (c *Cache) List(ctx context.Context, kind ledger.CatalogKind) ([]ledger.CatalogEntry, error) {
	if _, ok := ledger.ParseKind(string(kind)); !ok {
		return nil, ledger.ErrUnknownKind
	}

	var entries []ledger.CatalogEntry
	hit, err := c.get(ctx, kind, &entries)
	if err != nil {
		c.Log.Warn("catalog cache read failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	if hit {
		return entries, nil
	}

	return c.refresh(ctx, kind)
}

// Labels resolve os ids contra um único snapshot do catálogo
func (c *Cache) Labels(ctx context.Context, kind ledger.CatalogKind, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	entries, err := c.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(entries))
	for _, e := range entries {
		byID[e.ID] = e.Label
	}
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

// Warm recarrega todos os catálogos; chamado no start e pelo cron
func (c *Cache) Warm(ctx context.Context) error {
	for _, k := range kinds {
		if _, err := c.refresh(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) refresh(ctx context.Context, kind ledger.CatalogKind) ([]ledger.CatalogEntry, error) {
	entries, err := c.Source.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	if err := c.set(ctx, kind, entries); err != nil {
		c.Log.Warn("catalog cache write failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	return entries, nil
}

func (c *Cache) get(ctx context.Context, kind ledger.CatalogKind, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyCatalog(kind)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, kind ledger.CatalogKind, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyCatalog(kind), b, c.TTL).Err()
}
