// Package service provides the RabbitMQ publisher for domain events.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/room-reservation/internal/queue"
)

// Publisher publishes domain events to RabbitMQ.  A connection is
// dialed per publish: reservations are rare relative to reads and a
// dead broker must never take requests down with it.
type Publisher struct {
	url string
}

// NewPublisher builds a Publisher for the configured broker.
func NewPublisher() *Publisher {
	return &Publisher{url: queue.BrokerURL()}
}

// PublishRoomReserved publishes a RoomReservedEvent to the room.reserved
// queue.  Messages are marked persistent.  Any failure is logged and
// returned; the caller decides whether to care.
func (p *Publisher) PublishRoomReserved(ctx context.Context, event queue.RoomReservedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.RoomReservedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		queue.RoomReservedQueue, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
