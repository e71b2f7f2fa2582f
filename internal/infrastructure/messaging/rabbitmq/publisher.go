package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/account-service/internal/application/notify"
)

const (
	DefaultExchange = "account.events"

	// RoutingKeyMailRequested carries every outgoing account mail; an
	// external mail worker binds a queue to it.
	RoutingKeyMailRequested = "account.mail.requested"

	publishWait = 5 * time.Second

	appID = "account-service"
)

// MailRequestedEvent is the JSON body published for each mail.
type MailRequestedEvent struct {
	Kind        string    `json:"kind"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Link        string    `json:"link,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

func newMailRequestedEvent(msg notify.Message, at time.Time) MailRequestedEvent {
	return MailRequestedEvent{
		Kind:        string(msg.Kind),
		To:          msg.To,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Link:        msg.Link,
		RequestedAt: at.UTC(),
	}
}

// Publisher hands mail to the broker instead of an SMTP server. It publishes
// with mandatory=true and publisher confirms, so Send only succeeds once the
// broker accepted and routed the message.
type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{
		url:      url,
		exchange: exchange,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

// Send implements notify.Mailer.
func (p *Publisher) Send(ctx context.Context, msg notify.Message) error {
	pub, err := toPublishing(newMailRequestedEvent(msg, time.Now()))
	if err != nil {
		return err
	}
	return p.publish(ctx, RoutingKeyMailRequested, pub)
}

// toPublishing stamps each message with a fresh id so the consuming worker
// can drop redeliveries.
func toPublishing(evt MailRequestedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal mail event: %w", err)
	}
	return amqp.Publishing{
		AppId:        appID,
		MessageId:    uuid.NewString(),
		Type:         "mail." + evt.Kind,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.RequestedAt,
		Body:         body,
	}, nil
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	p.resetConn()
	return p.connect()
}

func (p *Publisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}
	p.drainPending()

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, true, false, msg); err != nil {
		p.resetConn()
		return fmt.Errorf("rabbitmq publish: key=%s: %w", routingKey, err)
	}
	return p.awaitConfirm(ctx, routingKey)
}

// drainPending drops confirms and returns left over from a publish that
// timed out before the broker answered.
func (p *Publisher) drainPending() {
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			return
		}
	}
}

// awaitConfirm waits for the broker's verdict. With mandatory set, an
// unroutable message produces basic.return before its basic.ack.
func (p *Publisher) awaitConfirm(ctx context.Context, routingKey string) error {
	unroutable := func(ret amqp.Return) error {
		return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
	}

	select {
	case ret := <-p.returnCh:
		return unroutable(ret)

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return unroutable(ret)
		default:
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq confirm: key=%s: %w", routingKey, ctx.Err())
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
