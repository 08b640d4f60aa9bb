package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// FeedMessage monta o envelope lido pelo hub do ledger-service
func FeedMessage(e events.BetLedgerEvent) ([]byte, error) {
	return json.Marshal(events.FeedUpdate{OwnerID: e.OwnerID, Payload: e})
}
