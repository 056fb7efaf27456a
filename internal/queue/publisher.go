package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishOrderPlaced publishes an OrderPlacedEvent to the order.placed queue.
// Errors are logged and returned so callers can ignore them: a broker outage
// must never fail the order request itself. Messages are persistent.
func PublishOrderPlaced(ctx context.Context, url string, event OrderPlacedEvent) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("[Queue] dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("[Queue] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(OrderQueueName, true, false, false, false, nil); err != nil {
		log.Printf("[Queue] queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Queue] marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", OrderQueueName, false, false, pub); err != nil {
		log.Printf("[Queue] publish failed: %v", err)
		return err
	}

	return nil
}
