package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a RabbitMQ publisher and consumer bound to one durable queue.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *log.Logger
}

var (
	_ Publisher = (*Client)(nil)
	_ Consumer  = (*Client)(nil)
)

// NewClient dials RabbitMQ and declares the queue.
func NewClient(url, queueName string, logger *log.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	logger.Info("rabbitmq queue declared", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("close rabbitmq channel", "err", err)
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishUserEvent publishes event as a persistent JSON message.
func (c *Client) PublishUserEvent(ctx context.Context, event UserEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.channel.PublishWithContext(
		publishCtx,
		"",           // default exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// ConsumeUserEvents blocks, handing each delivery to handler until ctx is done.
// Undecodable messages are dropped; failed ones are requeued.
func (c *Client) ConsumeUserEvents(ctx context.Context, handler func(context.Context, UserEvent) error) error {
	msgs, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Client) handle(ctx context.Context, msg amqp.Delivery, handler func(context.Context, UserEvent) error) {
	var event UserEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("drop malformed event", "err", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("handle event", "type", event.Type, "user_id", event.UserID, "err", err)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	if err := msg.Ack(false); err != nil {
		c.logger.Warn("ack event", "err", err)
	}
}
