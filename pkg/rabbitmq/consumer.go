package rabbitmq

import (
	"context"
	"fmt"

	"github.com/courtside/booking-service/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AuditQueueName  = "booking-service.audit"
	AuditBindingKey = "booking.*"

	prefetchCount = 16
)

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares the bookings exchange and a durable queue bound to it
// with the given routing key pattern.
func NewConsumer(url, queue, bindingKey string) (*Consumer, error) {
	conn, ch, err := openExchange(url)
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		closeAll(conn, ch)
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		closeAll(conn, ch)
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, bindingKey, ExchangeName, false, nil); err != nil {
		closeAll(conn, ch)
		return nil, fmt.Errorf("rabbitmq queue bind: %w", err)
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Consume starts delivery with manual acknowledgement. The channel closes
// when ctx is cancelled or the connection drops.
func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.ConsumeWithContext(ctx,
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	l := logger.Component("rabbitmq")
	l.Info().Str("queue", c.queue).Msg("consuming")
	return msgs, nil
}

func (c *Consumer) Close() {
	closeAll(c.conn, c.channel)
}
