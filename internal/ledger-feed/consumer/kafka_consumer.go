package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-feed/pubsub"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type HistoryWriter interface {
	InsertHistory(ctx context.Context, e events.BetLedgerEvent) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome os eventos do ledger, grava o histórico e repassa ao feed ao vivo.
// Callbacks de métricas são opcionais.
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	Repo        HistoryWriter
	Broadcaster Broadcaster
	Channel     string
	DLQ         MessageWriter // nil = mensagens inválidas são descartadas

	OnConsumed  func()
	OnPersist   func()
	OnBroadcast func()
	OnError     func(string) // por estágio

	ReadBackoff      time.Duration
	BroadcastTimeout time.Duration
}

// Run roda até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			sleep(ctx, p.backoff())
			continue
		}

		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem. Falha no histórico não impede o broadcast.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	if p.OnConsumed != nil {
		p.OnConsumed()
	}

	ev, ok := decode(m.Value)
	if !ok {
		p.Log.Warn("invalid ledger event",
			zap.String("key", string(m.Key)),
			zap.Int64("offset", m.Offset),
		)
		p.fail("decode")
		p.deadLetter(ctx, m)
		return
	}

	if err := p.Repo.InsertHistory(ctx, ev); err != nil {
		p.Log.Warn("db insert history failed", zap.String("bet_id", ev.BetID), zap.Error(err))
		p.fail("db_history")
	} else if p.OnPersist != nil {
		p.OnPersist()
	}

	p.broadcast(ctx, ev)
}

func (p *Processor) broadcast(ctx context.Context, ev events.BetLedgerEvent) {
	if p.Broadcaster == nil {
		return
	}
	b, err := pubsub.FeedMessage(ev)
	if err != nil {
		p.fail("encode")
		return
	}

	timeout := p.BroadcastTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Broadcaster.Publish(bctx, p.Channel, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.String("bet_id", ev.BetID), zap.Error(err))
		p.fail("broadcast")
		return
	}
	if p.OnBroadcast != nil {
		p.OnBroadcast()
	}
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source-topic", Value: []byte(m.Topic)},
		},
	}
	if err := p.DLQ.WriteMessages(ctx, msg); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) backoff() time.Duration {
	if p.ReadBackoff > 0 {
		return p.ReadBackoff
	}
	return 500 * time.Millisecond
}

// decode aceita só eventos com aposta, dono e tipo conhecido
func decode(raw []byte) (events.BetLedgerEvent, bool) {
	var ev events.BetLedgerEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ev, false
	}
	if ev.BetID == "" || ev.OwnerID == "" {
		return ev, false
	}
	switch ev.Type {
	case events.BetCreated, events.BetUpdated, events.BetDeleted:
	default:
		return ev, false
	}
	if ev.Ts.IsZero() {
		ev.Ts = time.Now().UTC()
	}
	return ev, true
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
