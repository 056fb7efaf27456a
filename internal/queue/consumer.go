package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to the broker, declares the order.placed queue
// and consumes events, logging each placed order for the back office. It runs
// a reconnect loop with backoff and never returns under normal operation;
// malformed messages are rejected without requeue so the stream keeps moving.
func StartOrderConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("[Orders] consumer dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("[Orders] consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(OrderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	deliveries, err := ch.Consume(OrderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		var event OrderPlacedEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("[Orders] dropping malformed event: %v", err)
			_ = d.Nack(false, false)
			continue
		}

		log.Printf("[Orders] order %s placed by %s: %.2f %s",
			event.OrderNumber, event.Phone, event.TotalAmount, event.Currency)
		_ = d.Ack(false)
	}

	return fmt.Errorf("delivery channel closed")
}
