package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

type scriptedReader struct {
	mu   sync.Mutex
	msgs []kafka.Message
	errs []error
	done func()
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	if r.done != nil {
		r.done()
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type fakeRepo struct {
	got []events.BetLedgerEvent
	err error
}

func (f *fakeRepo) InsertHistory(_ context.Context, e events.BetLedgerEvent) error {
	f.got = append(f.got, e)
	return f.err
}

type fakeBroadcaster struct {
	channel  string
	payloads [][]byte
	err      error
}

func (f *fakeBroadcaster) Publish(_ context.Context, channel string, payload []byte) error {
	f.channel = channel
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeDLQ struct{ msgs []kafka.Message }

func (f *fakeDLQ) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type stages struct {
	consumed, persisted, broadcast int
	errs                           []string
}

func newProcessor(t *testing.T, repo *fakeRepo, bc *fakeBroadcaster, dlq *fakeDLQ, st *stages) *Processor {
	p := &Processor{
		Log:         zaptest.NewLogger(t),
		Repo:        repo,
		Broadcaster: bc,
		Channel:     "bet_ledger_broadcast",
		OnConsumed:  func() { st.consumed++ },
		OnPersist:   func() { st.persisted++ },
		OnBroadcast: func() { st.broadcast++ },
		OnError:     func(s string) { st.errs = append(st.errs, s) },
		ReadBackoff: time.Millisecond,
	}
	if dlq != nil {
		p.DLQ = dlq
	}
	return p
}

func ledgerMessage(t *testing.T, e events.BetLedgerEvent) kafka.Message {
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Topic: "bet_ledger_events", Key: []byte(e.BetID), Value: b}
}

func sampleEvent() events.BetLedgerEvent {
	return events.BetLedgerEvent{
		Type:          events.BetCreated,
		BetID:         "bet-1",
		OwnerID:       "u-1",
		ResultID:      "res-win",
		Odds:          -110,
		AmountWagered: "100.00",
		AmountWon:     "190.91",
		DatePlaced:    time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
		Ts:            time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC),
	}
}

func TestHandle_PersistsAndBroadcasts(t *testing.T) {
	repo, bc, st := &fakeRepo{}, &fakeBroadcaster{}, &stages{}
	p := newProcessor(t, repo, bc, nil, st)

	p.Handle(context.Background(), ledgerMessage(t, sampleEvent()))

	require.Len(t, repo.got, 1)
	assert.Equal(t, "bet-1", repo.got[0].BetID)
	assert.Equal(t, "bet_ledger_broadcast", bc.channel)
	require.Len(t, bc.payloads, 1)

	var upd events.FeedUpdate
	require.NoError(t, json.Unmarshal(bc.payloads[0], &upd))
	assert.Equal(t, "u-1", upd.OwnerID)
	assert.Equal(t, "190.91", upd.Payload.AmountWon)

	assert.Equal(t, 1, st.consumed)
	assert.Equal(t, 1, st.persisted)
	assert.Equal(t, 1, st.broadcast)
	assert.Empty(t, st.errs)
}

func TestHandle_HistoryFailureStillBroadcasts(t *testing.T) {
	repo, bc, st := &fakeRepo{err: errors.New("db down")}, &fakeBroadcaster{}, &stages{}
	p := newProcessor(t, repo, bc, nil, st)

	p.Handle(context.Background(), ledgerMessage(t, sampleEvent()))

	assert.Equal(t, []string{"db_history"}, st.errs)
	assert.Equal(t, 0, st.persisted)
	assert.Equal(t, 1, st.broadcast)
}

func TestHandle_BroadcastFailure(t *testing.T) {
	repo, bc, st := &fakeRepo{}, &fakeBroadcaster{err: errors.New("redis down")}, &stages{}
	p := newProcessor(t, repo, bc, nil, st)

	p.Handle(context.Background(), ledgerMessage(t, sampleEvent()))

	assert.Equal(t, 1, st.persisted)
	assert.Equal(t, 0, st.broadcast)
	assert.Equal(t, []string{"broadcast"}, st.errs)
}

func TestHandle_InvalidMessagesGoToDLQ(t *testing.T) {
	noOwner := sampleEvent()
	noOwner.OwnerID = ""
	badType := sampleEvent()
	badType.Type = "settled"

	cases := map[string]kafka.Message{
		"not json":      {Topic: "bet_ledger_events", Key: []byte("k"), Value: []byte("{")},
		"missing owner": ledgerMessage(t, noOwner),
		"unknown type":  ledgerMessage(t, badType),
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			repo, bc, dlq, st := &fakeRepo{}, &fakeBroadcaster{}, &fakeDLQ{}, &stages{}
			p := newProcessor(t, repo, bc, dlq, st)

			p.Handle(context.Background(), msg)

			assert.Empty(t, repo.got)
			assert.Empty(t, bc.payloads)
			assert.Equal(t, []string{"decode"}, st.errs)
			require.Len(t, dlq.msgs, 1)
			assert.Equal(t, msg.Value, dlq.msgs[0].Value)
			assert.Equal(t, "bet_ledger_events", string(dlq.msgs[0].Headers[0].Value))
		})
	}
}

func TestHandle_InvalidWithoutDLQIsDropped(t *testing.T) {
	repo, bc, st := &fakeRepo{}, &fakeBroadcaster{}, &stages{}
	p := newProcessor(t, repo, bc, nil, st)

	p.Handle(context.Background(), kafka.Message{Value: []byte("nope")})

	assert.Empty(t, repo.got)
	assert.Equal(t, []string{"decode"}, st.errs)
}

func TestDecode_DefaultsTimestamp(t *testing.T) {
	e := sampleEvent()
	e.Ts = time.Time{}
	b, err := json.Marshal(e)
	require.NoError(t, err)

	got, ok := decode(b)
	require.True(t, ok)
	assert.False(t, got.Ts.IsZero())
}

func TestRun_RetriesReadErrorsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, bc, st := &fakeRepo{}, &fakeBroadcaster{}, &stages{}
	p := newProcessor(t, repo, bc, nil, st)
	p.Reader = &scriptedReader{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafka.Message{ledgerMessage(t, sampleEvent())},
		done: cancel,
	}

	err := p.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"read"}, st.errs)
	assert.Len(t, repo.got, 1)
}
