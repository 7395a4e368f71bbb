package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/repository"
)

// PropertyService owns PG listings and the public search over them.
type PropertyService struct {
	pgs         PGStore
	searchLimit int
	topLimit    int
}

func NewPropertyService(pgs PGStore, searchLimit, topLimit int) *PropertyService {
	if searchLimit <= 0 {
		searchLimit = 24
	}
	if topLimit <= 0 {
		topLimit = 10
	}
	return &PropertyService{pgs: pgs, searchLimit: searchLimit, topLimit: topLimit}
}

// RentOptionInput is one rent tier as submitted by an owner.
type RentOptionInput struct {
	Sharing string `json:"sharing"`
	Price   int64  `json:"price"`
}

// CreatePGInput carries the fields of a new listing.  Photos are opaque
// references into an external asset store.
type CreatePGInput struct {
	Name             string            `json:"name"`
	Area             string            `json:"area"`
	Address          string            `json:"address"`
	City             string            `json:"city"`
	Facilities       model.Facilities  `json:"facilities"`
	RentOptions      []RentOptionInput `json:"rentOptions"`
	Photos           []string          `json:"photos"`
	FoodTimingsPhoto *string           `json:"foodTimingsPhoto"`
}

// Create validates in and stores a new PG for owner.  A "single" rent tier
// is mandatory, sharing kinds must be known and distinct, and prices may not
// be negative.
func (s *PropertyService) Create(ctx context.Context, owner model.Owner, in CreatePGInput) (*model.PG, error) {
	p := &model.PG{
		OwnerID:          owner.ID,
		Name:             strings.TrimSpace(in.Name),
		Area:             strings.TrimSpace(in.Area),
		Address:          strings.TrimSpace(in.Address),
		City:             strings.TrimSpace(in.City),
		Facilities:       in.Facilities,
		FoodTimingsPhoto: in.FoodTimingsPhoto,
	}
	switch {
	case p.Name == "":
		return nil, Validation("name is required")
	case p.Area == "":
		return nil, Validation("area is required")
	case p.Address == "":
		return nil, Validation("address is required")
	case p.City == "":
		return nil, Validation("city is required")
	}
	if p.Facilities.Timings = strings.TrimSpace(p.Facilities.Timings); p.Facilities.Timings == "" {
		p.Facilities.Timings = "24x7"
	}

	seen := map[model.Sharing]bool{}
	for _, o := range in.RentOptions {
		sh, ok := model.ParseSharing(o.Sharing)
		if !ok {
			return nil, Validation("unknown sharing %q", o.Sharing)
		}
		if seen[sh] {
			return nil, Validation("duplicate rent option for %s sharing", sh)
		}
		if o.Price < 0 {
			return nil, Validation("price for %s sharing must not be negative", sh)
		}
		seen[sh] = true
		p.RentOptions = append(p.RentOptions, model.RentOption{Sharing: sh, Price: o.Price})
	}
	if !seen[model.SharingSingle] {
		return nil, Validation("single sharing rent is mandatory")
	}

	p.Photos = []string{}
	for _, ph := range in.Photos {
		if ph = strings.TrimSpace(ph); ph != "" {
			p.Photos = append(p.Photos, ph)
		}
	}

	if err := s.pgs.Create(ctx, p); err != nil {
		return nil, fromRepo("create pg", err)
	}
	log.Info().Uint64("pg_id", p.ID).Uint64("owner_id", owner.ID).Msg("pg created")
	return p, nil
}

// Delete removes a PG owned by owner.  Its live bookings are cancelled.
func (s *PropertyService) Delete(ctx context.Context, owner model.Owner, id uint64) error {
	cancelled, err := s.pgs.DeleteByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		return fromRepo("delete pg", err)
	}
	log.Info().Uint64("pg_id", id).Int64("bookings_cancelled", cancelled).Msg("pg deleted")
	return nil
}

func (s *PropertyService) Get(ctx context.Context, id uint64) (*model.PG, error) {
	p, err := s.pgs.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo("get pg", err)
	}
	return p, nil
}

func (s *PropertyService) ListByOwner(ctx context.Context, owner model.Owner) ([]model.PG, error) {
	items, err := s.pgs.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fromRepo("list owner pgs", err)
	}
	return items, nil
}

// ListTop returns the highest rated PGs.  limit <= 0 means the default.
func (s *PropertyService) ListTop(ctx context.Context, limit int) ([]model.PG, error) {
	if limit <= 0 {
		limit = s.topLimit
	}
	items, err := s.pgs.ListTop(ctx, limit)
	if err != nil {
		return nil, fromRepo("list top pgs", err)
	}
	return items, nil
}

// SearchParams is the raw query string of a search.  Values that do not
// parse are treated as absent.
type SearchParams struct {
	Area        string
	MinRating   string
	SharingKind string
	Sort        string
	Limit       string
}

// Search filters PGs by area/name substring, minimum rating and sharing.
// Filters combine with AND.  Sort "rating_desc" orders by rating, anything
// else by recency.  A missing or invalid limit uses the default.
func (s *PropertyService) Search(ctx context.Context, in SearchParams) ([]model.PG, error) {
	q := repository.PGSearchQuery{
		Area:        strings.TrimSpace(in.Area),
		SharingKind: strings.TrimSpace(in.SharingKind),
		SortRating:  in.Sort == "rating_desc",
		Limit:       s.searchLimit,
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(in.MinRating), 64); err == nil && v > 0 {
		q.MinRating = v
	}
	if n, err := strconv.Atoi(strings.TrimSpace(in.Limit)); err == nil && n > 0 {
		q.Limit = n
	}
	items, err := s.pgs.Search(ctx, q)
	if err != nil {
		return nil, fromRepo("search pgs", err)
	}
	if items == nil {
		items = []model.PG{}
	}
	return items, nil
}
