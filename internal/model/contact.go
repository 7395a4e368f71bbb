package model

import "time"

// ContactRequest is a message left through the public contact form, usually
// by someone who wants their PG listed.
type ContactRequest struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	PGName    *string   `json:"pgName,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
