// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: callers log failures and carry on with the request.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	CheckoutCompleted = "checkout.completed"
	ClientsSynced     = "clients.synced"
	VoucherIssued     = "voucher.issued"
)

type CheckoutCompletedEvent struct {
	GroupID    string   `json:"groupId"`
	Date       string   `json:"date"`
	BookingIDs []string `json:"bookingIds"`
	Vouchers   []string `json:"redeemedVouchers"`
	Revenue    string   `json:"revenue"`
	OccurredAt string   `json:"occurredAt"`
}

type ClientsSyncedEvent struct {
	UpdatedClients   int    `json:"updatedClients"`
	CreditedVouchers int    `json:"creditedVouchers"`
	Failed           int    `json:"failed"`
	OccurredAt       string `json:"occurredAt"`
}

type VoucherIssuedEvent struct {
	VoucherID  string `json:"voucherId"`
	Code       string `json:"code"`
	ClientID   string `json:"clientId"`
	PricePaid  string `json:"pricePaid"`
	OccurredAt string `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ string, _ any) error {
	return nil
}

// AMQPPublisher dials per publish; event volume is a handful per checkout.
type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("[events] dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("[events] channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("[events] queue declare failed")
		return err
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Queue string
	Event any
}

func (r *Recorder) Publish(_ context.Context, queue string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Queue: queue, Event: event})
	return nil
}

func (r *Recorder) Queues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Queue)
	}
	return out
}
