package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusReserved  BookingStatus = "reserved"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Active reports whether the status blocks the seeker from booking again.
func (s BookingStatus) Active() bool {
	return s == StatusReserved || s == StatusConfirmed
}

// Booking records a seeker's reservation of a PG.  It corresponds to a row
// in the `bookings` table.  PGName and PGArea are a snapshot taken when the
// booking is created so that history survives deletion of the listing.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – seeker who made the booking.
//	PGID          – PG being booked.
//	Sharing       – chosen rent tier.
//	Months        – duration of the stay, at least 1.
//	Amount        – total amount in rupees.
//	Status        – pending, reserved, confirmed or cancelled.
//	PaymentMethod – mock payment method (upi, card, netbanking, wallet), if any.
//	PaymentRef    – reference issued by the payment simulation.
type Booking struct {
	ID            uint64        `json:"id"`
	UserID        uint64        `json:"user"`
	PGID          uint64        `json:"pg"`
	PGName        string        `json:"pgName"`
	PGArea        string        `json:"pgArea"`
	Sharing       Sharing       `json:"sharing"`
	Months        int           `json:"months"`
	Amount        int64         `json:"amount"`
	Status        BookingStatus `json:"status"`
	PaymentMethod *string       `json:"paymentMethod,omitempty"`
	PaymentRef    *string       `json:"paymentRef,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// PGSummary is the reduced PG projection joined onto a seeker's bookings.
type PGSummary struct {
	ID     uint64   `json:"id"`
	Name   string   `json:"name"`
	Area   string   `json:"area"`
	Photos []string `json:"photos"`
}

// BookingDetail is a booking with its PG projection.  PG is nil when the
// listing has since been deleted; the snapshot fields on Booking remain.
type BookingDetail struct {
	Booking
	PG *PGSummary `json:"pgInfo"`
}
