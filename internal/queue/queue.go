// Package queue is the AMQP transport delivering push events to the
// notification worker.
package queue

import (
	"context"
	"fmt"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// PushQueue is the durable queue push events arrive on.
const PushQueue = "push_notifications"

// Client holds the AMQP connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewClient connects to the broker and declares the push queue.
func NewClient(url string, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		PushQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", PushQueue, err)
	}

	logger.Info("AMQP client connected", zap.String("queue", PushQueue))

	return &Client{conn: conn, channel: ch, logger: logger}, nil
}

// Consume delivers each push event body to handle until ctx is done.
// Handling errors reject the message without requeue; the platform owns
// redelivery policy.
func (c *Client) Consume(ctx context.Context, handle func(ctx context.Context, body []byte) error) error {
	deliveries, err := c.channel.Consume(
		PushQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := handle(ctx, d.Body); err != nil {
				c.logger.Error("Failed to handle push event", zap.Error(err))
				if nerr := d.Nack(false, false); nerr != nil {
					c.logger.Error("Failed to nack delivery", zap.Error(nerr))
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				c.logger.Error("Failed to ack delivery", zap.Error(err))
			}
		}
	}
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
