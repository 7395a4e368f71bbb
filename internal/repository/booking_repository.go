package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/campusnest/internal/model"
)

// BookingRepo provides data access for bookings.  The single-active-booking
// rule is backed by the uq_bookings_active_user key on the generated
// active_user_id column; HasActive is only a fast path in front of it.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.user_id, b.pg_id, b.pg_name, b.pg_area, b.sharing, b.months, b.amount,
	b.status, b.payment_method, b.payment_ref, b.created_at, b.updated_at`

func scanBooking(s rowScanner, extra ...any) (*model.Booking, error) {
	var (
		b      model.Booking
		method sql.NullString
		ref    sql.NullString
	)
	dest := []any{&b.ID, &b.UserID, &b.PGID, &b.PGName, &b.PGArea, &b.Sharing, &b.Months, &b.Amount,
		&b.Status, &method, &ref, &b.CreatedAt, &b.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if method.Valid {
		v := method.String
		b.PaymentMethod = &v
	}
	if ref.Valid {
		v := ref.String
		b.PaymentRef = &v
	}
	return &b, nil
}

// HasActive reports whether userID has a reserved or confirmed booking.
func (r *BookingRepo) HasActive(ctx context.Context, userID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE active_user_id = ?", userID).Scan(&n)
	return n > 0, err
}

// Create inserts b and populates its generated fields.  A concurrent
// insert of a second active booking for the same seeker loses on the
// unique key and gets ErrActiveBookingExists.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, pg_id, pg_name, pg_area, sharing, months, amount,
		status, payment_method, payment_ref) VALUES (?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, b.UserID, b.PGID, b.PGName, b.PGArea, string(b.Sharing),
		b.Months, b.Amount, string(b.Status), b.PaymentMethod, b.PaymentRef)
	if err != nil {
		if isDuplicateKey(err, "uq_bookings_active_user") {
			return ErrActiveBookingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", id))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// ListByUser returns the seeker's bookings newest first, each joined with the
// PG projection.  PG is nil for bookings whose listing no longer exists.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	q := `SELECT ` + bookingColumns + `, p.id, p.name, p.area, p.photos
		FROM bookings b
		LEFT JOIN pgs p ON p.id = b.pg_id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		var (
			pid    sql.NullInt64
			pname  sql.NullString
			parea  sql.NullString
			photos []byte
		)
		b, err := scanBooking(rows, &pid, &pname, &parea, &photos)
		if err != nil {
			return nil, err
		}
		d := model.BookingDetail{Booking: *b}
		if pid.Valid {
			d.PG = &model.PGSummary{ID: uint64(pid.Int64), Name: pname.String, Area: parea.String, Photos: []string{}}
			if len(photos) > 0 {
				if err := json.Unmarshal(photos, &d.PG.Photos); err != nil {
					return nil, err
				}
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetForUser returns booking id when it belongs to userID.
func (r *BookingRepo) GetForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ? AND b.user_id = ?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// DeleteForUser removes a booking owned by userID unless it is confirmed.
// The status condition lives in the DELETE itself so that a confirmation
// racing with the cancel is never lost.  It returns the deleted row.
func (r *BookingRepo) DeleteForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	b, err := r.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE id = ? AND user_id = ? AND status <> 'confirmed'", id, userID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 1 {
		return b, nil
	}
	// nothing deleted: either gone meanwhile or confirmed
	if _, err := r.GetForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	return nil, ErrBookingConfirmed
}

// ListByPGForOwner returns bookings on PG pgID, newest first, after checking
// that ownerID owns it.
func (r *BookingRepo) ListByPGForOwner(ctx context.Context, pgID, ownerID uint64) ([]model.Booking, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM pgs WHERE id = ?", pgID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPGNotFound
	}
	if err != nil {
		return nil, err
	}
	if owner != ownerID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings b WHERE b.pg_id = ? ORDER BY b.created_at DESC, b.id DESC", pgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ConfirmForOwner moves a reserved booking on one of ownerID's PGs to
// confirmed.  Any other current status yields ErrBookingState.
func (r *BookingRepo) ConfirmForOwner(ctx context.Context, id, ownerID uint64) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var owner sql.NullInt64
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+`, p.owner_id FROM bookings b
		 LEFT JOIN pgs p ON p.id = b.pg_id
		 WHERE b.id = ? FOR UPDATE`, id), &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if !owner.Valid || uint64(owner.Int64) != ownerID {
		return nil, ErrForbidden
	}
	if b.Status != model.StatusReserved {
		return nil, ErrBookingState
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status = 'confirmed' WHERE id = ?", id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	b.Status = model.StatusConfirmed
	return b, nil
}
