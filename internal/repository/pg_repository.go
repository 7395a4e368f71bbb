package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/campusnest/internal/model"
)

// PGRepo provides data access for PG listings and their per-rater ratings.
// rent_options and photos are stored as JSON columns; everything else maps
// one-to-one onto model.PG.
type PGRepo struct {
	db *sql.DB
}

// NewPGRepo constructs a new PGRepo bound to the given DB.
func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

const pgColumns = `id, owner_id, name, area, address, city, wifi, hot_water, timings,
	rent_options, photos, food_timings_photo, rating, rating_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPG(s rowScanner) (*model.PG, error) {
	var (
		p         model.PG
		rentRaw   []byte
		photosRaw []byte
		foodPhoto sql.NullString
	)
	if err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Area, &p.Address, &p.City,
		&p.Facilities.Wifi, &p.Facilities.HotWater, &p.Facilities.Timings,
		&rentRaw, &photosRaw, &foodPhoto, &p.Rating, &p.RatingCount,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rentRaw, &p.RentOptions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photosRaw, &p.Photos); err != nil {
		return nil, err
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if foodPhoto.Valid {
		v := foodPhoto.String
		p.FoodTimingsPhoto = &v
	}
	return &p, nil
}

func scanPGs(rows *sql.Rows) ([]model.PG, error) {
	defer rows.Close()
	out := []model.PG{}
	for rows.Next() {
		p, err := scanPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Create inserts a new PG and fills in its ID and timestamps.  Rating and
// RatingCount always start at zero regardless of what p carries.
func (r *PGRepo) Create(ctx context.Context, p *model.PG) error {
	rent, err := json.Marshal(p.RentOptions)
	if err != nil {
		return err
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return err
	}
	const q = `INSERT INTO pgs (owner_id, name, area, address, city, wifi, hot_water, timings,
		rent_options, photos, food_timings_photo) VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, p.OwnerID, p.Name, p.Area, p.Address, p.City,
		p.Facilities.Wifi, p.Facilities.HotWater, p.Facilities.Timings,
		rent, photos, p.FoodTimingsPhoto)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetByID returns the PG with its rating list, or ErrPGNotFound.
func (r *PGRepo) GetByID(ctx context.Context, id uint64) (*model.PG, error) {
	p, err := scanPG(r.db.QueryRowContext(ctx, "SELECT "+pgColumns+" FROM pgs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPGNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Ratings, err = loadRatings(ctx, r.db, id, false); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByOwner returns every PG owned by ownerID, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.PG, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pgColumns+" FROM pgs WHERE owner_id = ? ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return scanPGs(rows)
}

// ListTop returns up to limit PGs ordered by rating, then recency.
func (r *PGRepo) ListTop(ctx context.Context, limit int) ([]model.PG, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pgColumns+" FROM pgs ORDER BY rating DESC, created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return scanPGs(rows)
}

// DeleteByIDAndOwner removes a PG owned by ownerID.  Bookings on the PG that
// are not already cancelled are moved to cancelled in the same transaction,
// which frees each seeker's active slot; their name/area snapshot remains.
// Ratings go with the PG by FK cascade.  It returns the number of bookings
// cancelled.
func (r *PGRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var owner uint64
	err = tx.QueryRowContext(ctx, "SELECT owner_id FROM pgs WHERE id = ? FOR UPDATE", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPGNotFound
	}
	if err != nil {
		return 0, err
	}
	if owner != ownerID {
		return 0, ErrForbidden
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status = 'cancelled' WHERE pg_id = ? AND status <> 'cancelled'", id)
	if err != nil {
		return 0, err
	}
	cancelled, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pgs WHERE id = ?", id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return cancelled, nil
}

// ApplyRating records value as userID's rating of PG pgID and recomputes the
// aggregate.  The PG row is locked for the whole read-modify-write so that
// concurrent raters of the same PG are serialised.  It returns the updated PG
// and whether an existing entry was overwritten.
func (r *PGRepo) ApplyRating(ctx context.Context, pgID, userID uint64, value int) (*model.PG, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := scanPG(tx.QueryRowContext(ctx, "SELECT "+pgColumns+" FROM pgs WHERE id = ? FOR UPDATE", pgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrPGNotFound
	}
	if err != nil {
		return nil, false, err
	}
	if p.Ratings, err = loadRatings(ctx, tx, pgID, true); err != nil {
		return nil, false, err
	}
	// the stored count is derived; trust the list
	p.RatingCount = len(p.Ratings)

	updated := p.ApplyRating(userID, value)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pg_ratings (pg_id, user_id, value) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`, pgID, userID, value); err != nil {
		return nil, false, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE pgs SET rating = ?, rating_count = ? WHERE id = ?", p.Rating, p.RatingCount, pgID); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	committed = true
	return p, updated, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadRatings(ctx context.Context, q queryer, pgID uint64, lock bool) ([]model.RatingEntry, error) {
	query := "SELECT user_id, value FROM pg_ratings WHERE pg_id = ? ORDER BY created_at, user_id"
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.QueryContext(ctx, query, pgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RatingEntry
	for rows.Next() {
		var e model.RatingEntry
		if err := rows.Scan(&e.UserID, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
