package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	skafka "github.com/ttamura24/Sports-Betting-Logs/internal/shared/kafka"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// PublishLedgerEvent usa o betID como chave: eventos da mesma aposta ficam ordenados
func (p *KafkaPublisher) PublishLedgerEvent(ctx context.Context, e events.BetLedgerEvent) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return skafka.WriteJSON(ctx, p.Writer, e.BetID, b)
}
