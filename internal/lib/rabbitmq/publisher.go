package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher binds a channel to one exchange so services can publish
// without knowing the topology.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewPublisher creates a Publisher for the exchange.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish sends a JSON message with the given routing key.
func (p *Publisher) Publish(routingkey string, message any) error {
	return PublishMessage(p.ch, p.exchange, routingkey, message)
}

// PublishMessage publishes a JSON message to the exchange with the
// given routing key.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
