package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"cloud-drive/internal/catalog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultBufferSize = 128

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type message struct {
	ID        uuid.UUID       `json:"message_id"`
	EventID   int64           `json:"event_id"`
	UserID    int64           `json:"user_id"`
	EventType string          `json:"event_type"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload"`
}

var droppedEvents = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "amqp_events_dropped_total",
	Help: "Events dropped because the publisher buffer was full.",
})

func init() {
	prometheus.MustRegister(droppedEvents)
}

// AMQPPublisher forwards events to a topic exchange, routed by event type.
// Publish only enqueues; Worker drains the queue until its context ends.
type AMQPPublisher struct {
	exchange string
	log      *zap.Logger
	conn     *amqp091.Connection
	pubCh    amqpChannel
	in       chan *catalog.Event
}

func DialAMQP(ctx context.Context, url, exchange string, bufferSize int, logger *zap.Logger) (*AMQPPublisher, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	conn, err := amqp091.DialConfig(url, amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "cloud-drive",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	logger.Info("rabbitmq connected", zap.String("exchange", exchange))

	p := newAMQPPublisher(ch, exchange, bufferSize, logger)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string, bufferSize int, logger *zap.Logger) *AMQPPublisher {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &AMQPPublisher{
		exchange: exchange,
		log:      logger,
		pubCh:    ch,
		in:       make(chan *catalog.Event, bufferSize),
	}
}

func (p *AMQPPublisher) Publish(event *catalog.Event) {
	select {
	case p.in <- event:
	default:
		droppedEvents.Inc()
		p.log.Warn("amqp publisher buffer full, dropping event",
			zap.Int64("event_id", event.ID),
			zap.String("event_type", event.EventType),
		)
	}
}

func (p *AMQPPublisher) Worker(ctx context.Context) {
	p.log.Info("starting amqp publisher worker")

	defer func() {
		p.log.Info("amqp publisher worker stopped")
	}()

	for {
		select {
		case e := <-p.in:
			if err := p.publish(ctx, e); err != nil {
				p.log.Error("amqp publish error", zap.Error(err), zap.Int64("event_id", e.ID))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, e *catalog.Event) error {
	msg := message{
		ID:        uuid.New(),
		EventID:   e.ID,
		UserID:    e.UserID,
		EventType: e.EventType,
		EventTime: e.EventTime,
		Payload:   e.Payload,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.pubCh.PublishWithContext(ctx, p.exchange, e.EventType, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msg.ID.String(),
		Timestamp:    e.EventTime,
		Type:         e.EventType,
		Headers:      amqp091.Table{"user_id": strconv.FormatInt(e.UserID, 10)},
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	var err error
	if p.pubCh != nil {
		err = p.pubCh.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
