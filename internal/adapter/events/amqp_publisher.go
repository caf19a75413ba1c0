package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func() (io.Closer, channel, error)

const dialTimeout = 5 * time.Second

// AMQPPublisher sends workflow events to a topic exchange; the
// notification service binds on "proof.*". A publish that finds the
// channel closed redials once and retries.
type AMQPPublisher struct {
	mu       sync.Mutex
	dial     dialFunc
	conn     io.Closer
	ch       channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		exchange: exchange,
		dial: func() (io.Closer, channel, error) {
			return dialExchange(url, exchange)
		},
	}
	if err := p.redial(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialExchange(url, exchange string) (io.Closer, channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         key,
		Body:         b,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if p.dial == nil {
			return amqp.ErrClosed
		}
		if err := p.redial(); err != nil {
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) || p.dial == nil {
		return err
	}
	if rerr := p.redial(); rerr != nil {
		return fmt.Errorf("%w (redial: %w)", err, rerr)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

// redial expects p.mu to be held.
func (p *AMQPPublisher) redial() error {
	_ = p.closeLocked()
	conn, ch, err := p.dial()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQPPublisher) closeLocked() error {
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
	}
	return err
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.log.InfoContext(ctx, "event", "key", key, "payload", json.RawMessage(b))
	return nil
}
