// Package events publishes order lifecycle events to kafka. The producer is
// optional; checkout succeeds whether or not a broker is configured.
package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"storefront/internal/domain"

	"github.com/segmentio/kafka-go"
)

const EventOrderPlaced = "order.placed"

type OrderPlacedPayload struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"totalCents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Producer struct {
	w      *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger *log.Logger
}

// NewProducer builds an async producer draining an internal buffer so that
// publishing never blocks a checkout. Returns nil when no brokers are
// configured.
func NewProducer(brokers []string, topic string, logger *log.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, 256),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left.
func (p *Producer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.logger.Printf("events: publish key=%s error=%v", m.Key, err)
	}
}

// OrderPlaced enqueues an order.placed event. Drops the event when the
// buffer is full rather than stalling the caller.
func (p *Producer) OrderPlaced(o *domain.Order) {
	if p == nil || o == nil {
		return
	}
	payload, err := json.Marshal(OrderPlacedPayload{
		EventType:  EventOrderPlaced,
		OrderID:    o.ID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	msg := kafka.Message{
		Key:   []byte(o.ID),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Printf("events: inbox full, dropped order_id=%s", o.ID)
	}
}

// WaitClosed blocks until the drain goroutine has flushed and exited.
func (p *Producer) WaitClosed() {
	if p == nil {
		return
	}
	<-p.done
}
