package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Relay publishes a named event on a channel. Implementations must be safe for concurrent use.
type Relay interface {
	Publish(ctx context.Context, channel, event string, payload any) error
	Close() error
}

// ErrRelayUnavailable is returned while the relay is reconnecting to the broker.
var ErrRelayUnavailable = errors.New("event relay is reconnecting")

const reconnectInterval = 5 * time.Second

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpSession is one live connection and channel. closed fires when either of them goes away.
type amqpSession struct {
	conn   io.Closer
	ch     amqpPublisher
	closed <-chan *amqp.Error
}

type dialFunc func() (*amqpSession, error)

// AMQPRelay publishes events to a RabbitMQ topic exchange, using the channel name as routing key.
// A lost connection is re-dialled in the background; Publish fails fast until it is back.
type AMQPRelay struct {
	mu           sync.Mutex
	session      *amqpSession
	reconnecting bool
	exchange     string
	dial         dialFunc
	interval     time.Duration
	log          *zap.Logger
	done         chan struct{}
	closeOnce    sync.Once
}

// DialAMQP connects to the broker and declares the topic exchange.
func DialAMQP(url, exchange string, log *zap.Logger) (*AMQPRelay, error) {
	dial := func() (*amqpSession, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to relay: %w", err)
		}

		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to open relay channel: %w", err)
		}

		err = ch.ExchangeDeclare(
			exchange,
			"topic", // type
			true,    // durable
			false,   // auto-deleted
			false,   // internal
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}

		// A channel error closes only the channel, so both are watched.
		closed := make(chan *amqp.Error, 2)
		conn.NotifyClose(forward(closed))
		ch.NotifyClose(forward(closed))
		return &amqpSession{conn: conn, ch: ch, closed: closed}, nil
	}
	return newAMQPRelay(dial, exchange, reconnectInterval, log)
}

// forward relays the single close notification amqp091 sends into out.
func forward(out chan<- *amqp.Error) chan *amqp.Error {
	in := make(chan *amqp.Error, 1)
	go func() {
		if err, ok := <-in; ok {
			out <- err
		} else {
			out <- nil
		}
	}()
	return in
}

func newAMQPRelay(dial dialFunc, exchange string, interval time.Duration, log *zap.Logger) (*AMQPRelay, error) {
	session, err := dial()
	if err != nil {
		return nil, err
	}
	r := &AMQPRelay{
		session:  session,
		exchange: exchange,
		dial:     dial,
		interval: interval,
		log:      log.Named("relay"),
		done:     make(chan struct{}),
	}
	go r.watch(session)
	return r, nil
}

// watch waits for the session to close and starts reconnecting.
func (r *AMQPRelay) watch(s *amqpSession) {
	var reason *amqp.Error
	select {
	case <-r.done:
		return
	case reason = <-s.closed:
	}

	r.mu.Lock()
	if r.session == s {
		r.session = nil
	}
	r.mu.Unlock()
	s.ch.Close()
	s.conn.Close()

	if reason != nil {
		r.log.Warn("relay connection lost, reconnecting", zap.String("reason", reason.Reason), zap.Int("code", reason.Code))
	} else {
		r.log.Warn("relay connection closed, reconnecting")
	}
	r.reconnect()
}

func (r *AMQPRelay) reconnect() {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			session, err := r.dial()
			if err != nil {
				r.log.Info("relay failed to reconnect", zap.Error(err))
				continue
			}
			r.mu.Lock()
			select {
			case <-r.done:
				r.mu.Unlock()
				session.ch.Close()
				session.conn.Close()
				return
			default:
			}
			r.session = session
			r.mu.Unlock()
			r.log.Info("relay reconnected")
			go r.watch(session)
			return
		}
	}
}

// Publish sends the JSON-encoded payload with the event name as message type.
func (r *AMQPRelay) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ErrRelayUnavailable
	}
	return r.session.ch.PublishWithContext(ctx,
		r.exchange, // exchange
		channel,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Type:        event,
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        body,
		})
}

func (r *AMQPRelay) Close() error {
	r.closeOnce.Do(func() { close(r.done) })

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	s := r.session
	r.session = nil
	if err := s.ch.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

// LogRelay writes events to the log instead of a broker. It is used when the relay is disabled.
type LogRelay struct {
	log *zap.Logger
}

func NewLogRelay(log *zap.Logger) *LogRelay {
	return &LogRelay{log: log}
}

func (r *LogRelay) Publish(_ context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	r.log.Info("event",
		zap.String("channel", channel),
		zap.String("event", event),
		zap.ByteString("payload", body))
	return nil
}

func (r *LogRelay) Close() error { return nil }
