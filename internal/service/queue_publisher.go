package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campusnest/internal/queue"
)

// RabbitPublisher publishes booking events to the booking.events queue.
// Each call dials its own connection; errors are logged and returned so the
// caller can choose to ignore them.  Messages are marked as persistent.
type RabbitPublisher struct {
	URL string
}

func NewRabbitPublisher(url string) *RabbitPublisher { return &RabbitPublisher{URL: url} }

func (p *RabbitPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.BookingQueueName, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueueName, false, false, pub); err != nil {
		log.Warn().Err(err).Uint64("booking_id", ev.BookingID).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }
