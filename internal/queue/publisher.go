package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// ExchangePublisher publishes updates to UpdateExchange
type ExchangePublisher struct {
	conn *amqp.Connection
}

// NewExchangePublisher creates a publisher on conn
func NewExchangePublisher(conn *amqp.Connection) *ExchangePublisher {
	return &ExchangePublisher{conn: conn}
}

// RoutingKey returns the routing key for a request id
func RoutingKey(id string) string {
	return fmt.Sprintf("tailor.%s", id)
}

// PublishUpdate sends update as JSON. A short-lived channel is used per
// update so a publish failure cannot poison the consumer channel.
func (p *ExchangePublisher) PublishUpdate(ctx context.Context, update Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	return ch.Publish(
		UpdateExchange, // exchange
		RoutingKey(update.ID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   update.Timestamp,
			Body:        body,
		},
	)
}
