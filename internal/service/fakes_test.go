package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/queue"
	"github.com/iliyamo/campusnest/internal/receipt"
	"github.com/iliyamo/campusnest/internal/repository"
)

// ---- fakes ----

type fakePGs struct {
	mu     sync.Mutex
	items  map[uint64]*model.PG
	nextID uint64
	lastQ  repository.PGSearchQuery
}

func newFakePGs(pgs ...*model.PG) *fakePGs {
	f := &fakePGs{items: map[uint64]*model.PG{}}
	for _, p := range pgs {
		f.items[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakePGs) Create(ctx context.Context, p *model.PG) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakePGs) GetByID(ctx context.Context, id uint64) (*model.PG, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrPGNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePGs) ListByOwner(ctx context.Context, ownerID uint64) ([]model.PG, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.PG{}
	for _, p := range f.items {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePGs) ListTop(ctx context.Context, limit int) ([]model.PG, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.PG{}
	for _, p := range f.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePGs) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return 0, repository.ErrPGNotFound
	}
	if p.OwnerID != ownerID {
		return 0, repository.ErrForbidden
	}
	delete(f.items, id)
	return 0, nil
}

func (f *fakePGs) Search(ctx context.Context, q repository.PGSearchQuery) ([]model.PG, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = q
	return nil, nil
}

func (f *fakePGs) ApplyRating(ctx context.Context, pgID, userID uint64, value int) (*model.PG, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[pgID]
	if !ok {
		return nil, false, repository.ErrPGNotFound
	}
	updated := p.ApplyRating(userID, value)
	cp := *p
	return &cp, updated, nil
}

// fakeBookings enforces the one-active-booking rule inside Create, the way
// the unique key does, independently of HasActive.
type fakeBookings struct {
	mu     sync.Mutex
	items  map[uint64]*model.Booking
	nextID uint64
	pgs    *fakePGs
	// raceHasActive makes HasActive always report false so that callers
	// reach Create concurrently.
	raceHasActive bool
}

func newFakeBookings(pgs *fakePGs) *fakeBookings {
	return &fakeBookings{items: map[uint64]*model.Booking{}, pgs: pgs}
}

func (f *fakeBookings) HasActive(ctx context.Context, userID uint64) (bool, error) {
	if f.raceHasActive {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.UserID == userID && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.Status.Active() {
		for _, o := range f.items {
			if o.UserID == b.UserID && o.Status.Active() {
				return repository.ErrActiveBookingExists
			}
		}
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	cp := *b
	f.items[b.ID] = &cp
	return nil
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range f.items {
		if b.UserID != userID {
			continue
		}
		d := model.BookingDetail{Booking: *b}
		if p, err := f.pgs.GetByID(ctx, b.PGID); err == nil {
			d.PG = &model.PGSummary{ID: p.ID, Name: p.Name, Area: p.Area, Photos: p.Photos}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBookings) GetForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) DeleteForUser(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok || b.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status == model.StatusConfirmed {
		return nil, repository.ErrBookingConfirmed
	}
	delete(f.items, id)
	return b, nil
}

func (f *fakeBookings) ListByPGForOwner(ctx context.Context, pgID, ownerID uint64) ([]model.Booking, error) {
	p, err := f.pgs.GetByID(ctx, pgID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, repository.ErrForbidden
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Booking{}
	for _, b := range f.items {
		if b.PGID == pgID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ConfirmForOwner(ctx context.Context, id, ownerID uint64) (*model.Booking, error) {
	f.mu.Lock()
	b, ok := f.items[id]
	f.mu.Unlock()
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	p, err := f.pgs.GetByID(ctx, b.PGID)
	if err != nil || p.OwnerID != ownerID {
		return nil, repository.ErrForbidden
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.Status != model.StatusReserved {
		return nil, repository.ErrBookingState
	}
	b.Status = model.StatusConfirmed
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) setStatus(id uint64, s model.BookingStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Status = s
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeUsers map[uint64]model.User

func (f fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, errors.New("user not found")
	}
	return u, nil
}

type fakeReceipts struct {
	err   error
	block chan struct{} // when set, Generate waits for it to close
	mu    sync.Mutex
	snaps []receipt.Snapshot
}

func (f *fakeReceipts) Generate(s receipt.Snapshot) (model.Receipt, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.snaps = append(f.snaps, s)
	f.mu.Unlock()
	if f.err != nil {
		return model.Receipt{}, f.err
	}
	return model.Receipt{BookingID: s.BookingID, FileName: receipt.FileName(s.BookingID)}, nil
}

func (f *fakeReceipts) URL(name string) string { return "/receipts/" + name }

type fakeReceiptStore struct {
	mu    sync.Mutex
	saved []model.Receipt
}

func (f *fakeReceiptStore) Save(ctx context.Context, rc model.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, rc)
	return nil
}

func (f *fakeReceiptStore) GetByBooking(ctx context.Context, bookingID uint64) (*model.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].BookingID == bookingID {
			rc := f.saved[i]
			return &rc, nil
		}
	}
	return nil, repository.ErrReceiptNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (f *fakePublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

// ---- fixtures ----

const (
	ownerID  = 100
	seekerID = 7
)

func samplePG(id uint64, name string, double int64) *model.PG {
	return &model.PG{
		ID: id, OwnerID: ownerID, Name: name, Area: "Koramangala", Photos: []string{"pg/" + name},
		RentOptions: []model.RentOption{
			{Sharing: model.SharingSingle, Price: double + 4000},
			{Sharing: model.SharingDouble, Price: double},
		},
	}
}
