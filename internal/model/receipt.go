package model

import "time"

// Receipt is the write-once record of a generated booking receipt.  It is
// keyed by booking ID and snapshots the values printed on the document.
// Receipts are not removed when their booking is cancelled.
type Receipt struct {
	BookingID   uint64    `json:"bookingId"`
	ReceiptNo   string    `json:"receiptNo"`
	FileName    string    `json:"fileName"`
	Amount      int64     `json:"amount"`
	PGName      string    `json:"pgName"`
	PGArea      string    `json:"pgArea"`
	Sharing     Sharing   `json:"sharing"`
	SeekerName  string    `json:"seekerName"`
	SeekerEmail string    `json:"seekerEmail"`
	GeneratedAt time.Time `json:"generatedAt"`
}
