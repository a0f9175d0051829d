// Package bus implements the event-bus contract on RabbitMQ.
//
// Topology: one durable topic exchange for domain events, routed by event
// name. Each consumer group owns a durable queue plus a TTL-based retry
// queue; after the delivery bound a message is parked on the group's
// dead-letter queue instead of retrying forever in-process.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

const publishTimeout = 5 * time.Second

// Publisher publishes domain event envelopes to the topic exchange.
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewPublisher connects to the broker and declares the event exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.DialConfig(url, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish sends the envelope routed by its event name. It returns only
// after the broker has accepted the message.
func (p *Publisher) Publish(ctx context.Context, env event.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		env.EventName, // routing key
		false,         // mandatory
		false,         // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    env.EventID.String(),
			Timestamp:    env.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.EventName, err)
	}

	slog.InfoContext(ctx, "Published domain event",
		"event", env.EventName,
		"event_id", env.EventID,
		"owner_id", env.OwnerID,
	)
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Consumer delivers events to consumer-group handlers with bounded
// redelivery and dead-lettering.
type Consumer struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	exchange      string
	maxDeliveries int
	retryDelay    time.Duration
}

// NewConsumer connects to the broker for consuming.
func NewConsumer(url, exchange string, maxDeliveries int, retryDelay time.Duration) (*Consumer, error) {
	conn, err := amqp091.DialConfig(url, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("set QoS: %w", err)
	}

	return &Consumer{
		conn:          conn,
		channel:       channel,
		exchange:      exchange,
		maxDeliveries: maxDeliveries,
		retryDelay:    retryDelay,
	}, nil
}

// Subscribe binds the consumer group's queue to every handled event name
// and pulls deliveries until the context is cancelled.
func (c *Consumer) Subscribe(ctx context.Context, consumerGroup string, handlers map[string]adapter.EventHandler) error {
	if len(handlers) == 0 {
		return fmt.Errorf("no handlers provided for group %s", consumerGroup)
	}

	queueName, deadQueue, err := c.declareTopology(consumerGroup)
	if err != nil {
		return err
	}

	for eventName := range handlers {
		if err := c.channel.QueueBind(queueName, eventName, c.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", queueName, eventName, err)
		}
	}

	deliveries, err := c.channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming %s: %w", queueName, err)
	}

	slog.InfoContext(ctx, "Consumer group subscribed",
		"group", consumerGroup,
		"queue", queueName,
		"events", len(handlers),
	)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Consumer group shutting down", "group", consumerGroup)
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed for group %s", consumerGroup)
			}
			c.handleDelivery(ctx, consumerGroup, deadQueue, handlers, delivery)
		}
	}
}

// declareTopology sets up the group's main, retry and dead-letter queues.
func (c *Consumer) declareTopology(consumerGroup string) (queueName, deadQueue string, err error) {
	if err = c.channel.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		return "", "", fmt.Errorf("declare exchange: %w", err)
	}

	retryExchange := c.exchange + ".retry"
	if err = c.channel.ExchangeDeclare(retryExchange, "direct", true, false, false, false, nil); err != nil {
		return "", "", fmt.Errorf("declare retry exchange: %w", err)
	}

	queueName = consumerGroup
	_, err = c.channel.QueueDeclare(queueName, true, false, false, false, amqp091.Table{
		"x-dead-letter-exchange":    retryExchange,
		"x-dead-letter-routing-key": consumerGroup,
	})
	if err != nil {
		return "", "", fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	// Rejected messages wait here for retryDelay, then flow back to the
	// main queue through the default exchange.
	retryQueue := consumerGroup + ".retry"
	_, err = c.channel.QueueDeclare(retryQueue, true, false, false, false, amqp091.Table{
		"x-message-ttl":             c.retryDelay.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queueName,
	})
	if err != nil {
		return "", "", fmt.Errorf("declare retry queue %s: %w", retryQueue, err)
	}
	if err = c.channel.QueueBind(retryQueue, consumerGroup, retryExchange, false, nil); err != nil {
		return "", "", fmt.Errorf("bind retry queue: %w", err)
	}

	deadQueue = consumerGroup + ".dlq"
	if _, err = c.channel.QueueDeclare(deadQueue, true, false, false, false, nil); err != nil {
		return "", "", fmt.Errorf("declare dead-letter queue %s: %w", deadQueue, err)
	}

	return queueName, deadQueue, nil
}

func (c *Consumer) handleDelivery(
	ctx context.Context,
	consumerGroup, deadQueue string,
	handlers map[string]adapter.EventHandler,
	delivery amqp091.Delivery,
) {
	var env event.Envelope
	if err := json.Unmarshal(delivery.Body, &env); err != nil {
		// Poison message: no amount of redelivery fixes a broken envelope.
		slog.ErrorContext(ctx, "Failed to unmarshal envelope, parking message",
			"group", consumerGroup,
			"routing_key", delivery.RoutingKey,
			"error", err,
		)
		c.park(ctx, deadQueue, delivery)
		return
	}

	handler, ok := handlers[env.EventName]
	if !ok {
		slog.WarnContext(ctx, "No handler for event, dropping",
			"group", consumerGroup,
			"event", env.EventName,
		)
		_ = delivery.Ack(false)
		return
	}

	if err := handler(ctx, env); err != nil {
		deliveries := deliveryCount(delivery) + 1
		if deliveries >= int64(c.maxDeliveries) {
			slog.ErrorContext(ctx, "Handler exhausted deliveries, parking message",
				"group", consumerGroup,
				"event", env.EventName,
				"event_id", env.EventID,
				"deliveries", deliveries,
				"error", err,
			)
			c.park(ctx, deadQueue, delivery)
			return
		}

		slog.WarnContext(ctx, "Handler failed, scheduling redelivery",
			"group", consumerGroup,
			"event", env.EventName,
			"event_id", env.EventID,
			"deliveries", deliveries,
			"error", err,
		)
		_ = delivery.Nack(false, false) // routes through the retry queue
		return
	}

	_ = delivery.Ack(false)
}

// park moves a message to the dead-letter queue and acknowledges it.
func (c *Consumer) park(ctx context.Context, deadQueue string, delivery amqp091.Delivery) {
	err := c.channel.PublishWithContext(ctx, "", deadQueue, false, false, amqp091.Publishing{
		ContentType:  delivery.ContentType,
		DeliveryMode: amqp091.Persistent,
		MessageId:    delivery.MessageId,
		Timestamp:    delivery.Timestamp,
		Body:         delivery.Body,
	})
	if err != nil {
		// Keep the message in flight rather than lose it.
		slog.ErrorContext(ctx, "Failed to park message, requeueing", "error", err)
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

// deliveryCount reads how many times the message already cycled through the
// retry queue from the broker's x-death header.
func deliveryCount(delivery amqp091.Delivery) int64 {
	deaths, ok := delivery.Headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return 0
	}
	entry, ok := deaths[0].(amqp091.Table)
	if !ok {
		return 0
	}
	count, ok := entry["count"].(int64)
	if !ok {
		return 0
	}
	return count
}

// Close closes the channel and connection.
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
