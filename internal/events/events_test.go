package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cloud-drive/internal/catalog"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []*catalog.Event
}

func (r *recorder) Publish(e *catalog.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp091.Publishing
	keys      []string
	done      chan struct{}
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, nil, b, Nop{}}

	m.Publish(&catalog.Event{ID: 1, EventType: catalog.EventShareReceived})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
}

func TestAMQPPublisherWorker(t *testing.T) {
	ch := &fakeChannel{done: make(chan struct{}, 1)}
	p := newAMQPPublisher(ch, "drive.events", 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Worker(ctx)

	p.Publish(&catalog.Event{
		ID:        7,
		UserID:    42,
		EventType: catalog.EventNodeTrashed,
		EventTime: time.Now(),
		Payload:   json.RawMessage(`{"node_id":"x"}`),
	})

	select {
	case <-ch.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Equal(t, []string{catalog.EventNodeTrashed}, ch.keys)
	require.Equal(t, "application/json", ch.published[0].ContentType)

	var msg message
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &msg))
	require.EqualValues(t, 7, msg.EventID)
	require.EqualValues(t, 42, msg.UserID)
	require.JSONEq(t, `{"node_id":"x"}`, string(msg.Payload))
}

func TestAMQPPublisherDropsWhenFull(t *testing.T) {
	p := newAMQPPublisher(&fakeChannel{done: make(chan struct{}, 8)}, "drive.events", 1, zap.NewNop())

	p.Publish(&catalog.Event{ID: 1})
	p.Publish(&catalog.Event{ID: 2})

	require.Len(t, p.in, 1)
}
