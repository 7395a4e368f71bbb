package model

import (
	"strings"
	"time"
)

// Sharing is the occupancy tier of a room.  Each tier carries its own
// monthly price on a PG listing.
type Sharing string

const (
	SharingSingle Sharing = "single"
	SharingDouble Sharing = "double"
	SharingTriple Sharing = "triple"
	SharingQuad   Sharing = "quad"
)

// ParseSharing normalises s (case-insensitive, surrounding space ignored)
// and reports whether it names a known tier.
func ParseSharing(s string) (Sharing, bool) {
	switch v := Sharing(strings.ToLower(strings.TrimSpace(s))); v {
	case SharingSingle, SharingDouble, SharingTriple, SharingQuad:
		return v, true
	}
	return "", false
}

// RentOption is a single rent tier embedded in a PG.  Sharing is unique
// per PG and Price is a non-negative monthly amount in rupees.
type RentOption struct {
	Sharing Sharing `json:"sharing"`
	Price   int64   `json:"price"`
}

// Facilities groups the amenity flags shown on a listing.
type Facilities struct {
	Wifi     bool   `json:"wifi"`
	HotWater bool   `json:"hotWater"`
	Timings  string `json:"timings"`
}

// RatingEntry is one rater's score for a PG.  A PG holds at most one
// entry per rater.
type RatingEntry struct {
	UserID uint64 `json:"user"`
	Value  int    `json:"value"`
}

// PG represents a paying-guest listing as stored in the `pgs` table with
// its per-rater list loaded from `pg_ratings`.
//
// Fields:
//
//	ID          – primary key identifier.
//	OwnerID     – user ID of the owner who created the listing.
//	Rating      – mean of Ratings rounded half-up to one decimal; 0 when unrated.
//	RatingCount – number of distinct raters; always len(Ratings) when loaded.
type PG struct {
	ID               uint64        `json:"id"`
	OwnerID          uint64        `json:"owner"`
	Name             string        `json:"name"`
	Area             string        `json:"area"`
	Address          string        `json:"address"`
	City             string        `json:"city"`
	Facilities       Facilities    `json:"facilities"`
	RentOptions      []RentOption  `json:"rentOptions"`
	Photos           []string      `json:"photos"`
	FoodTimingsPhoto *string       `json:"foodTimingsPhoto,omitempty"`
	Rating           float64       `json:"rating"`
	RatingCount      int           `json:"ratingCount"`
	Ratings          []RatingEntry `json:"ratings,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// RentFor returns the rent tier matching sharing, if the PG offers it.
func (p *PG) RentFor(sharing Sharing) (RentOption, bool) {
	for _, o := range p.RentOptions {
		if o.Sharing == sharing {
			return o, true
		}
	}
	return RentOption{}, false
}

// HasSharing reports whether any rent tier matches s case-insensitively.
func (p *PG) HasSharing(s string) bool {
	for _, o := range p.RentOptions {
		if strings.EqualFold(string(o.Sharing), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

// ApplyRating records value for userID.  An existing entry for the rater is
// overwritten in place and the count is left alone; otherwise a new entry is
// appended and the count grows by one.  The aggregate is recomputed from the
// whole list in both cases.  It reports whether an existing entry was updated.
func (p *PG) ApplyRating(userID uint64, value int) bool {
	updated := false
	for i := range p.Ratings {
		if p.Ratings[i].UserID == userID {
			p.Ratings[i].Value = value
			updated = true
			break
		}
	}
	if !updated {
		p.Ratings = append(p.Ratings, RatingEntry{UserID: userID, Value: value})
		p.RatingCount++
	}
	sum := 0
	for _, r := range p.Ratings {
		sum += r.Value
	}
	p.Rating = RoundRating(sum, p.RatingCount)
	return updated
}

// RoundRating returns sum/count rounded half-up to one decimal place, or 0
// when count is zero.  The arithmetic stays in integers so that values such
// as 4.25 do not fall victim to binary float representation.
func RoundRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	// tenths = floor(sum*10/count + 1/2)
	tenths := (sum*20 + count) / (count * 2)
	return float64(tenths) / 10
}
