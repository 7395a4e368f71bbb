package service

import (
	"context"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/queue"
	"github.com/iliyamo/campusnest/internal/receipt"
	"github.com/iliyamo/campusnest/internal/repository"
)

// PGStore is the persistence the property and search services need.
type PGStore interface {
	Create(ctx context.Context, p *model.PG) error
	GetByID(ctx context.Context, id uint64) (*model.PG, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.PG, error)
	ListTop(ctx context.Context, limit int) ([]model.PG, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (int64, error)
	Search(ctx context.Context, q repository.PGSearchQuery) ([]model.PG, error)
}

// RatingStore applies one rater's score atomically.
type RatingStore interface {
	ApplyRating(ctx context.Context, pgID, userID uint64, value int) (*model.PG, bool, error)
}

type BookingStore interface {
	HasActive(ctx context.Context, userID uint64) (bool, error)
	GetForUser(ctx context.Context, id, userID uint64) (*model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	DeleteForUser(ctx context.Context, id, userID uint64) (*model.Booking, error)
	ListByPGForOwner(ctx context.Context, pgID, ownerID uint64) ([]model.Booking, error)
	ConfirmForOwner(ctx context.Context, id, ownerID uint64) (*model.Booking, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ReceiptRenderer writes receipt documents and knows their public URL.
type ReceiptRenderer interface {
	Generate(s receipt.Snapshot) (model.Receipt, error)
	URL(fileName string) string
}

type ReceiptStore interface {
	Save(ctx context.Context, rc model.Receipt) error
	GetByBooking(ctx context.Context, bookingID uint64) (*model.Receipt, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type ContactStore interface {
	Create(ctx context.Context, c *model.ContactRequest) error
}
