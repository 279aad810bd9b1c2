// Package notify sends staff notifications through a RabbitMQ work queue.
// cmd/notifier consumes the queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/panaghia/restaurant/pkg/transport"
)

const (
	Exchange = "notifications_fanout"
	Queue    = "notifications.q"
)

const (
	KindNewOrder      = "new_order"
	KindPasswordReset = "password_reset"
)

type Message struct {
	Kind       string           `json:"kind"`
	Order      *transport.Order `json:"order,omitempty"`
	Email      string           `json:"email,omitempty"`
	ResetToken string           `json:"reset_token,omitempty"`
	At         time.Time        `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

// Dial connects, enables publisher confirms and declares the topology.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	c := &Client{conn: conn, ch: ch, acks: acks}
	if err := c.declare(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) declare() error {
	if err := c.ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(Queue, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(Queue, "", Exchange, false, nil)
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// Notify publishes msg persistently and waits for the broker confirm.
func (c *Client) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.PublishWithContext(ctx, Exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Type:         msg.Kind,
		Body:         body,
	}); err != nil {
		return err
	}

	select {
	case conf := <-c.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume hands every delivery to handle until ctx is done. Undecodable
// messages and handler failures are dropped, not requeued.
func (c *Client) Consume(ctx context.Context, consumer string, handle func(context.Context, Message) error) error {
	if err := c.ch.Qos(10, 0, false); err != nil {
		return err
	}
	deliveries, err := c.ch.Consume(Queue, consumer, false, false, false, false, nil)
	if err != nil {
		return err
	}
	log := slog.Default().With("consumer", consumer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var msg Message
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Warn("notification_error", "reason", "bad payload", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handle(ctx, msg); err != nil {
				log.Warn("notification_error", "reason", "handler failed", "kind", msg.Kind, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }

// Render formats a notification as the plain text a staff mailbox would get.
func Render(msg Message) string {
	var b strings.Builder
	switch msg.Kind {
	case KindNewOrder:
		if msg.Order == nil {
			return "Comandă nouă"
		}
		o := msg.Order
		fmt.Fprintf(&b, "Comandă nouă %s\n", o.OrderNumber)
		fmt.Fprintf(&b, "Client: %s, %s\n", o.Customer.Name, o.Customer.Phone)
		if o.OrderType == transport.Delivery {
			fmt.Fprintf(&b, "Livrare la: %s\n", o.Customer.Address)
		} else {
			b.WriteString("Ridicare personală\n")
		}
		for _, it := range o.Items {
			fmt.Fprintf(&b, "  %d x %s (%s lei)\n", it.Quantity, it.Name, it.Price.StringFixed(2))
		}
		if o.Customer.Notes != "" {
			fmt.Fprintf(&b, "Observații: %s\n", o.Customer.Notes)
		}
		fmt.Fprintf(&b, "Total: %s lei (%s)", o.Total.StringFixed(2), o.PaymentMethod)
	case KindPasswordReset:
		fmt.Fprintf(&b, "Resetare parolă pentru %s\nCod: %s", msg.Email, msg.ResetToken)
	default:
		fmt.Fprintf(&b, "Notificare %s", msg.Kind)
	}
	return b.String()
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Notify(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}
