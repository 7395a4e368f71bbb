// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingQueueName is the durable queue booking events are published to.
const BookingQueueName = "booking.events"

// Booking event types.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingConfirmed = "booking.confirmed"
)

// BookingEvent is published after a booking changes state.  It contains
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  uint64 `json:"booking_id"`
	UserID     uint64 `json:"user_id"`
	PGID       uint64 `json:"pg_id"`
	PGName     string `json:"pg_name"`
	PGArea     string `json:"pg_area"`
	Sharing    string `json:"sharing"`
	Months     int    `json:"months"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receipt_url,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
