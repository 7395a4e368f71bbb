package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/campusnest/internal/model"
)

// PGSearchQuery defines the filters applied by Search.  Zero values leave a
// filter out; all set filters combine with AND.
type PGSearchQuery struct {
	Area        string  // substring of area OR name, case-insensitive
	MinRating   float64 // rating >= MinRating when > 0
	SharingKind string  // at least one rent tier with this sharing
	SortRating  bool    // rating desc instead of newest first
	Limit       int
}

// likeEscaper escapes LIKE metacharacters in user input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns the PGs matching q, at most q.Limit of them.  No match is an
// empty slice, not an error.
func (r *PGRepo) Search(ctx context.Context, q PGSearchQuery) ([]model.PG, error) {
	where := []string{}
	args := []any{}

	if a := strings.TrimSpace(q.Area); a != "" {
		pat := "%" + likeEscaper.Replace(strings.ToLower(a)) + "%"
		where = append(where, "(LOWER(area) LIKE ? OR LOWER(name) LIKE ?)")
		args = append(args, pat, pat)
	}
	if q.MinRating > 0 {
		where = append(where, "rating >= ?")
		args = append(args, q.MinRating)
	}
	if s := strings.TrimSpace(q.SharingKind); s != "" {
		// sharing values are stored lower-cased
		where = append(where, "JSON_CONTAINS(rent_options, JSON_OBJECT('sharing', ?))")
		args = append(args, strings.ToLower(s))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	order := "created_at DESC, id DESC"
	if q.SortRating {
		order = "rating DESC, created_at DESC, id DESC"
	}

	dataSQL := "SELECT " + pgColumns + " FROM pgs WHERE " + cond + " ORDER BY " + order + " LIMIT ?"
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	return scanPGs(rows)
}
