package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/observability"
	"github.com/iliyamo/campusnest/internal/payment"
	"github.com/iliyamo/campusnest/internal/queue"
	"github.com/iliyamo/campusnest/internal/receipt"
)

// PGReader loads a single PG.
type PGReader interface {
	GetByID(ctx context.Context, id uint64) (*model.PG, error)
}

// BookingOptions tunes BookingService.
type BookingOptions struct {
	// ReceiptTimeout bounds how long Create waits for the receipt.  Slower
	// receipts finish in the background and are left out of the response.
	ReceiptTimeout time.Duration
	// StrictAmount rejects a client amount that differs from price*months.
	// When false the client amount is stored as given.
	StrictAmount bool
}

// BookingService runs the booking lifecycle: a seeker holds at most one
// reserved or confirmed booking, receipts are generated best-effort and
// state changes are announced as events.
type BookingService struct {
	bookings     BookingStore
	pgs          PGReader
	users        UserReader
	receipts     ReceiptRenderer
	receiptStore ReceiptStore
	events       EventPublisher
	opts         BookingOptions

	wg sync.WaitGroup // receipts still rendering after Create returned
}

func NewBookingService(bookings BookingStore, pgs PGReader, users UserReader, receipts ReceiptRenderer,
	receiptStore ReceiptStore, events EventPublisher, opts BookingOptions) *BookingService {
	if opts.ReceiptTimeout <= 0 {
		opts.ReceiptTimeout = 5 * time.Second
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingService{
		bookings: bookings, pgs: pgs, users: users, receipts: receipts,
		receiptStore: receiptStore, events: events, opts: opts,
	}
}

// CreateBookingInput is a seeker's booking request.  Months defaults to 1.
type CreateBookingInput struct {
	PGID    uint64           `json:"pgId"`
	Sharing string           `json:"sharing"`
	Months  int              `json:"months"`
	Amount  int64            `json:"amount"`
	Payment *payment.Details `json:"payment"`
}

// CreateBookingResult is returned by Create.  ReceiptURL is empty when the
// receipt could not be produced in time; ReceiptWarning then says why.
type CreateBookingResult struct {
	BookingID      uint64         `json:"bookingId"`
	Booking        *model.Booking `json:"booking"`
	ReceiptURL     string         `json:"receiptUrl,omitempty"`
	ReceiptWarning string         `json:"receiptWarning,omitempty"`
}

// Create reserves a PG for seeker.  It fails with a conflict while the
// seeker has another active booking, even when two requests race.
func (s *BookingService) Create(ctx context.Context, seeker model.Seeker, in CreateBookingInput) (*CreateBookingResult, error) {
	if in.Amount <= 0 {
		return nil, Validation("amount must be greater than 0")
	}
	if in.Months == 0 {
		in.Months = 1
	}
	if in.Months < 1 {
		return nil, Validation("months must be at least 1")
	}
	sharing, ok := model.ParseSharing(in.Sharing)
	if !ok {
		return nil, Validation("unknown sharing %q", in.Sharing)
	}

	active, err := s.bookings.HasActive(ctx, seeker.ID)
	if err != nil {
		return nil, fromRepo("check active booking", err)
	}
	if active {
		observability.ObserveBooking("conflict")
		return nil, Conflict("active booking exists")
	}

	pg, err := s.pgs.GetByID(ctx, in.PGID)
	if err != nil {
		return nil, fromRepo("load pg", err)
	}
	tier, ok := pg.RentFor(sharing)
	if !ok {
		return nil, Validation("pg does not offer %s sharing", sharing)
	}
	if want := tier.Price * int64(in.Months); s.opts.StrictAmount && in.Amount != want {
		return nil, Validation("amount must be %d for %d month(s) of %s sharing", want, in.Months, sharing)
	}

	pay, err := payment.Simulate(in.Payment)
	if err != nil {
		var pe *payment.Error
		if errors.As(err, &pe) {
			return nil, Validation("%s", pe.Msg)
		}
		return nil, err
	}

	b := &model.Booking{
		UserID:  seeker.ID,
		PGID:    pg.ID,
		PGName:  pg.Name,
		PGArea:  pg.Area,
		Sharing: sharing,
		Months:  in.Months,
		Amount:  in.Amount,
		Status:  model.StatusReserved,
	}
	if pay.Ref != "" {
		method, ref := string(pay.Method), pay.Ref
		b.PaymentMethod, b.PaymentRef = &method, &ref
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if err = fromRepo("create booking", err); KindOf(err) == KindConflict {
			observability.ObserveBooking("conflict")
		}
		return nil, err
	}
	observability.ObserveBooking("created")
	log.Info().Uint64("booking_id", b.ID).Uint64("user_id", seeker.ID).Uint64("pg_id", pg.ID).Msg("booking reserved")

	res := &CreateBookingResult{BookingID: b.ID, Booking: b}
	url, err := s.receipt(ctx, b)
	if err != nil {
		res.ReceiptWarning = err.Error()
	} else {
		res.ReceiptURL = url
	}
	s.publish(ctx, queue.EventBookingCreated, b, res.ReceiptURL)
	return res, nil
}

var errReceiptPending = errors.New("receipt is still being generated and may be unavailable")

// receipt renders and records the receipt for b, waiting at most
// ReceiptTimeout.  Failures never undo the booking.
func (s *BookingService) receipt(ctx context.Context, b *model.Booking) (string, error) {
	u, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		observability.ObserveReceipt("error")
		log.Error().Err(err).Uint64("booking_id", b.ID).Msg("receipt: load seeker failed")
		return "", errors.New("receipt unavailable")
	}
	snap := receipt.Snapshot{
		BookingID: b.ID, SeekerName: u.Name, SeekerEmail: u.Email,
		PGName: b.PGName, PGArea: b.PGArea, Sharing: b.Sharing,
		Months: b.Months, Amount: b.Amount,
	}
	if b.PaymentRef != nil {
		snap.PaymentRef = *b.PaymentRef
	}

	bg := context.WithoutCancel(ctx)
	done := make(chan error, 1)
	var url string
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rc, err := s.receipts.Generate(snap)
		if err != nil {
			done <- IOError("receipt unavailable", err)
			return
		}
		if err := s.receiptStore.Save(bg, rc); err != nil {
			// the file exists; only the record is missing
			log.Error().Err(err).Uint64("booking_id", b.ID).Msg("receipt: save record failed")
		}
		url = s.receipts.URL(rc.FileName)
		done <- nil
	}()

	t := time.NewTimer(s.opts.ReceiptTimeout)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil {
			observability.ObserveReceipt("error")
			log.Error().Err(err).Uint64("booking_id", b.ID).Msg("receipt generation failed")
			return "", err
		}
		observability.ObserveReceipt("ok")
		return url, nil
	case <-t.C:
		observability.ObserveReceipt("timeout")
		log.Warn().Uint64("booking_id", b.ID).Dur("timeout", s.opts.ReceiptTimeout).Msg("receipt generation still running")
		go func() {
			if err := <-done; err != nil {
				log.Error().Err(err).Uint64("booking_id", b.ID).Msg("late receipt generation failed")
				return
			}
			log.Info().Uint64("booking_id", b.ID).Msg("late receipt generated")
		}()
		return "", errReceiptPending
	}
}

// Wait blocks until receipts started by Create have finished.
func (s *BookingService) Wait() { s.wg.Wait() }

// Cancel deletes the seeker's booking id.  Confirmed bookings cannot be
// cancelled.  The receipt, if any, is kept.
func (s *BookingService) Cancel(ctx context.Context, seeker model.Seeker, id uint64) error {
	b, err := s.bookings.DeleteForUser(ctx, id, seeker.ID)
	if err != nil {
		return fromRepo("cancel booking", err)
	}
	observability.ObserveBooking("cancelled")
	log.Info().Uint64("booking_id", id).Uint64("user_id", seeker.ID).Msg("booking cancelled")
	b.Status = model.StatusCancelled
	s.publish(ctx, queue.EventBookingCancelled, b, "")
	return nil
}

// ReceiptView is a stored receipt record with its public URL.
type ReceiptView struct {
	model.Receipt
	URL string `json:"url"`
}

// Receipt returns the receipt record of one of the seeker's bookings.  It is
// not found while generation is still running or after it failed.
func (s *BookingService) Receipt(ctx context.Context, seeker model.Seeker, bookingID uint64) (*ReceiptView, error) {
	if _, err := s.bookings.GetForUser(ctx, bookingID, seeker.ID); err != nil {
		return nil, fromRepo("load booking", err)
	}
	rc, err := s.receiptStore.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, fromRepo("load receipt", err)
	}
	return &ReceiptView{Receipt: *rc, URL: s.receipts.URL(rc.FileName)}, nil
}

// ListMine returns the seeker's bookings newest first.
func (s *BookingService) ListMine(ctx context.Context, seeker model.Seeker) ([]model.BookingDetail, error) {
	items, err := s.bookings.ListByUser(ctx, seeker.ID)
	if err != nil {
		return nil, fromRepo("list bookings", err)
	}
	return items, nil
}

// ListForPG returns bookings on one of owner's PGs.
func (s *BookingService) ListForPG(ctx context.Context, owner model.Owner, pgID uint64) ([]model.Booking, error) {
	items, err := s.bookings.ListByPGForOwner(ctx, pgID, owner.ID)
	if err != nil {
		return nil, fromRepo("list pg bookings", err)
	}
	return items, nil
}

// Confirm moves a reserved booking on one of owner's PGs to confirmed.
func (s *BookingService) Confirm(ctx context.Context, owner model.Owner, id uint64) (*model.Booking, error) {
	b, err := s.bookings.ConfirmForOwner(ctx, id, owner.ID)
	if err != nil {
		return nil, fromRepo("confirm booking", err)
	}
	observability.ObserveBooking("confirmed")
	log.Info().Uint64("booking_id", id).Uint64("owner_id", owner.ID).Msg("booking confirmed")
	s.publish(ctx, queue.EventBookingConfirmed, b, "")
	return b, nil
}

func (s *BookingService) publish(ctx context.Context, typ string, b *model.Booking, receiptURL string) {
	ev := queue.BookingEvent{
		Type: typ, BookingID: b.ID, UserID: b.UserID, PGID: b.PGID,
		PGName: b.PGName, PGArea: b.PGArea, Sharing: string(b.Sharing),
		Months: b.Months, Amount: b.Amount, Status: string(b.Status),
		ReceiptURL: receiptURL, OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		log.Error().Err(err).Uint64("booking_id", b.ID).Str("event", typ).Msg("publish booking event failed")
	}
}
