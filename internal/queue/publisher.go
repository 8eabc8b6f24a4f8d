package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds the TCP connect and the AMQP handshake.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends ReservationEvents to RabbitMQ.  The connection is
// opened on first use and reopened after the broker drops it.  Messages
// are persistent and routed through the default exchange to a durable
// queue named after the event type.
type Publisher struct {
	url string
	// DialTimeout caps connecting to a broker that accepts TCP but
	// never completes the handshake.
	DialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	// declared remembers queues already declared on ch.
	declared map[string]bool
}

// NewPublisher returns a Publisher for the broker at url.  No
// connection is made until the first Publish.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, DialTimeout: DefaultDialTimeout, declared: map[string]bool{}}
}

// Publish sends ev on the queue named by ev.Type.  Errors are logged
// and returned so the caller may ignore them.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	if ev.Type == "" {
		return errors.New("queue: event without type")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	ch, err := p.channel(ctx)
	if err != nil {
		log.Printf("rabbitmq: channel unavailable: %v", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ch != p.ch {
		return errors.New("queue: channel replaced during publish")
	}
	if !p.declared[ev.Type] {
		// Idempotent; durable so messages survive broker restarts.
		if _, err := ch.QueueDeclare(ev.Type, true, false, false, false, nil); err != nil {
			log.Printf("rabbitmq: queue declare failed: %v", err)
			p.reset()
			return err
		}
		p.declared[ev.Type] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(pctx, "", ev.Type, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.reset()
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// channel returns an open channel, dialing when needed.  The dial runs
// without mu held and gives up at DialTimeout or when ctx ends,
// whichever comes first.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	p.reset()
	p.mu.Unlock()

	conn, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		// lost a race with another dial; keep the first connection
		_ = conn.Close()
		return p.ch, nil
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
	p.declared = map[string]bool{}
}
