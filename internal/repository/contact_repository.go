package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/campusnest/internal/model"
)

// ContactRepo stores messages from the public contact form.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts c and sets its ID.
func (r *ContactRepo) Create(ctx context.Context, c *model.ContactRequest) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO contact_requests (name, email, phone, pg_name, message) VALUES (?,?,?,?,?)",
		c.Name, c.Email, c.Phone, c.PGName, c.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}
