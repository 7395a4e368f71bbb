package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campusnest/internal/model"
)

// ErrReceiptNotFound is returned when no receipt has been recorded for a
// booking.
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptRepo stores receipt records.  Rows are keyed by booking ID and are
// kept after the booking is cancelled.
type ReceiptRepo struct {
	db *sql.DB
}

func NewReceiptRepo(db *sql.DB) *ReceiptRepo { return &ReceiptRepo{db: db} }

// Save records rc, replacing any earlier record for the same booking, which
// mirrors the regenerated file overwriting the old one.
func (r *ReceiptRepo) Save(ctx context.Context, rc model.Receipt) error {
	const q = `INSERT INTO receipts (booking_id, receipt_no, file_name, amount, pg_name, pg_area,
		sharing, seeker_name, seeker_email, generated_at) VALUES (?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE receipt_no = VALUES(receipt_no), file_name = VALUES(file_name),
		amount = VALUES(amount), pg_name = VALUES(pg_name), pg_area = VALUES(pg_area),
		sharing = VALUES(sharing), seeker_name = VALUES(seeker_name),
		seeker_email = VALUES(seeker_email), generated_at = VALUES(generated_at)`
	_, err := r.db.ExecContext(ctx, q, rc.BookingID, rc.ReceiptNo, rc.FileName, rc.Amount,
		rc.PGName, rc.PGArea, string(rc.Sharing), rc.SeekerName, rc.SeekerEmail, rc.GeneratedAt)
	return err
}

// GetByBooking returns the receipt record for bookingID.
func (r *ReceiptRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.QueryRowContext(ctx,
		`SELECT booking_id, receipt_no, file_name, amount, pg_name, pg_area, sharing,
		 seeker_name, seeker_email, generated_at FROM receipts WHERE booking_id = ?`, bookingID).
		Scan(&rc.BookingID, &rc.ReceiptNo, &rc.FileName, &rc.Amount, &rc.PGName, &rc.PGArea,
			&rc.Sharing, &rc.SeekerName, &rc.SeekerEmail, &rc.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}
