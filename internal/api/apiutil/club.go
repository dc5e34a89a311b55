package apiutil

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

type ClubQueries interface {
	GetClubByID(ctx context.Context, id int64) (dbgen.Club, error)
}

// ClubFromPath loads the active club named by the {club_id} path value. It
// writes a 400, 404 or 500 and returns false when there is no such club.
func ClubFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request, q ClubQueries) (dbgen.Club, bool) {
	clubID, err := PathID(r, "club_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dbgen.Club{}, false
	}

	club, err := q.GetClubByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return dbgen.Club{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", clubID).Msg("Failed to load club")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return dbgen.Club{}, false
	}
	if club.Status != models.ClubStatusActive {
		http.Error(w, "Club not found", http.StatusNotFound)
		return dbgen.Club{}, false
	}
	return club, true
}
