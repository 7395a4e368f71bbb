package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/observability"
)

// RatingResult is the outcome of a submitted rating.
type RatingResult struct {
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	UserRating  int     `json:"userRating"`
	Updated     bool    `json:"updated"`
}

// RatingService aggregates seeker ratings into each PG's score.
type RatingService struct {
	store RatingStore
}

func NewRatingService(store RatingStore) *RatingService { return &RatingService{store: store} }

// Submit records value (1..5) as the seeker's rating of pgID.  A seeker who
// rated before has their entry overwritten; the count only grows for new
// raters.
func (s *RatingService) Submit(ctx context.Context, seeker model.Seeker, pgID uint64, value int) (RatingResult, error) {
	if value < 1 || value > 5 {
		return RatingResult{}, Validation("rating must be an integer between 1 and 5")
	}
	p, updated, err := s.store.ApplyRating(ctx, pgID, seeker.ID, value)
	if err != nil {
		return RatingResult{}, fromRepo("apply rating", err)
	}
	observability.ObserveRating(updated)
	log.Debug().Uint64("pg_id", pgID).Uint64("user_id", seeker.ID).Bool("updated", updated).
		Float64("rating", p.Rating).Msg("rating applied")
	return RatingResult{Rating: p.Rating, RatingCount: p.RatingCount, UserRating: value, Updated: updated}, nil
}
