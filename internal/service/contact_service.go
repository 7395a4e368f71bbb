package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/iliyamo/campusnest/internal/model"
)

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	PGName  string `json:"pgName"`
	Message string `json:"message"`
}

type ContactService struct {
	store ContactStore
}

func NewContactService(store ContactStore) *ContactService { return &ContactService{store: store} }

// Submit stores a contact request.  Name, a valid email and a message are
// required.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*model.ContactRequest, error) {
	c := &model.ContactRequest{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Message: strings.TrimSpace(in.Message),
		Phone:   optional(in.Phone),
		PGName:  optional(in.PGName),
	}
	if c.Name == "" || c.Message == "" {
		return nil, Validation("name and message are required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return nil, Validation("invalid email")
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fromRepo("create contact request", err)
	}
	return c, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
