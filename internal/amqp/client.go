package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"expensetracker/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
	// connectTimeout bounds the TCP dial and AMQP handshake at startup.
	connectTimeout = 10 * time.Second
	// reconnectTimeout bounds the reconnect attempted inside Publish, which
	// runs on the request path with c.mu held.
	reconnectTimeout = 2 * time.Second
	heartbeat        = 10 * time.Second
)

var (
	// ErrCircuitOpen is returned by Publish while the broker is considered down.
	ErrCircuitOpen = errors.New("amqp circuit breaker open")
	// ErrDropMessage makes Consume reject a delivery without requeueing it.
	ErrDropMessage = errors.New("drop message")
)

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if err := client.connect(connectTimeout); err != nil {
		return nil, err
	}
	return client, nil
}

// ConnectWithRetry keeps dialing with exponential backoff until attempts run
// out or ctx is done.
func ConnectWithRetry(ctx context.Context, url, exchangeName, queueName string, attempts int, logger *log.Logger) (*Client, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		client, err := NewClient(url, exchangeName, queueName, logger)
		if err == nil {
			return client, nil
		}
		lastErr = err
		wait := exponentialBackoff(attempt)
		logger.WithComponent(log.ComponentAMQP).Warn("AMQP connection failed, retrying",
			"attempt", attempt+1, "retry_in", wait.String(), log.FieldError, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect to AMQP after %d attempts: %w", attempts, lastErr)
}

func (c *Client) connect(timeout time.Duration) error {
	conn, err := amqp091.DialConfig(c.url, amqp091.Config{
		Dial:      amqp091.DefaultDial(timeout),
		Heartbeat: heartbeat,
		Locale:    "en_US",
	})
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Direct exchange: the queue name doubles as routing key
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends a persistent JSON event. Connection failures trigger a single
// reconnect; repeated failures open the circuit breaker.
func (c *Client) Publish(ctx context.Context, event *LedgerEvent) error {
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.publishLocked(ctx, event, body)
	if err != nil && isConnectionError(err) {
		c.logger.WarnContext(ctx, "AMQP connection lost, reconnecting", log.FieldError, err)
		c.closeLocked()
		if rerr := c.connect(reconnectBudget(ctx)); rerr == nil {
			err = c.publishLocked(ctx, event, body)
		} else {
			c.logger.WarnContext(ctx, "AMQP reconnect failed", log.FieldError, rerr)
		}
	}
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	c.logger.DebugContext(ctx, "Published ledger event",
		log.NewFields().WithEvent(event.ID, string(event.Kind)).ToSlice()...)
	return nil
}

func (c *Client) publishLocked(ctx context.Context, event *LedgerEvent, body []byte) error {
	if c.channel == nil || c.channel.IsClosed() {
		return amqp091.ErrClosed
	}
	return c.channel.PublishWithContext(ctx,
		c.exchangeName,
		c.queueName,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID,
			Type:         string(event.Kind),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
}

// Consume delivers events to handler until ctx is cancelled. Handler errors
// requeue the delivery once; a failing redelivery, ErrDropMessage or an
// undecodable body is rejected without requeue.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *LedgerEvent) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(context.Context, *LedgerEvent) error) {
	event, err := LedgerEventFromJSON(d.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode message", log.FieldError, err)
		_ = d.Nack(false, false)
		return
	}

	fields := log.NewFields().WithEvent(event.ID, string(event.Kind))
	if event.TransactionID != 0 {
		fields[log.FieldTransactionID] = event.TransactionID
	}
	if event.CategoryID != 0 {
		fields[log.FieldCategoryID] = event.CategoryID
	}

	if err := handler(ctx, event); err != nil {
		requeue := !d.Redelivered && !errors.Is(err, ErrDropMessage)
		c.logger.ErrorContext(ctx, "Failed to handle message",
			append(fields.WithError(err).ToSlice(), "requeue", requeue)...)
		_ = d.Nack(false, requeue)
		return
	}

	_ = d.Ack(false)
	c.logger.InfoContext(ctx, "Processed ledger event", fields.ToSlice()...)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// recordFailure must be called with c.mu held or before the client is shared.
func (c *Client) recordFailure() {
	c.lastFailure = time.Now()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// reconnectBudget is reconnectTimeout capped by what is left of ctx.
func reconnectBudget(ctx context.Context) time.Duration {
	budget := reconnectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < budget {
			budget = left
		}
	}
	if budget <= 0 {
		budget = time.Millisecond
	}
	return budget
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
