// internal/api/matches/handlers.go
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	matchstats "github.com/codr1/Courtside/internal/matches"
	"github.com/codr1/Courtside/internal/models"
)

const (
	matchesQueryTimeout    = 5 * time.Second
	defaultMatchesPageSize = 20
	maxMatchesPageSize     = 100
)

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once
	now         = time.Now
)

type recordMatchRequest struct {
	Team1     []int64 `json:"team1"`
	Team2     []int64 `json:"team2"`
	Score     string  `json:"score"`
	PlayedAt  string  `json:"played_at"`
	BookingID *int64  `json:"booking_id"`
}

type matchResponse struct {
	ID          int64                 `json:"id"`
	ClubID      int64                 `json:"club_id"`
	BookingID   *int64                `json:"booking_id,omitempty"`
	PlayedAt    time.Time             `json:"played_at"`
	Score       string                `json:"score"`
	Sets        []matchstats.SetScore `json:"sets"`
	WinningTeam int64                 `json:"winning_team"`
	RecordedBy  int64                 `json:"recorded_by"`
	Team1       []matchstats.Player   `json:"team1"`
	Team2       []matchstats.Player   `json:"team2"`
	CreatedAt   time.Time             `json:"created_at"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("matches.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// POST /api/v1/clubs/{club_id}/matches
// The caller must have played in the match or be a club admin. Every player
// must be an active member of the club.
func HandleRecordMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	user := apiutil.RequireAuthenticated(w, r)
	if user == nil {
		return
	}

	var req recordMatchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	if err := matchstats.ValidateTeams(req.Team1, req.Team2); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	score, err := matchstats.ParseScore(req.Score)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Invalid club timezone")
		http.Error(w, "Invalid club timezone", http.StatusInternalServerError)
		return
	}
	playedAt := now().UTC()
	if req.PlayedAt != "" {
		playedAt, err = apiutil.ParseTimestamp(req.PlayedAt, "played_at", loc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if playedAt.After(now().Add(time.Minute)) {
		http.Error(w, "played_at cannot be in the future", http.StatusBadRequest)
		return
	}

	role, _, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to record match", http.StatusInternalServerError)
		return
	}
	if !role.IsAdmin() && !playedIn(user.ID, req.Team1, req.Team2) {
		logger.Warn().Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Match record denied: caller did not play")
		http.Error(w, "Only players or club admins can record a match", http.StatusForbidden)
		return
	}

	var (
		created dbgen.MatchResult
		players []dbgen.ListMatchResultPlayersRow
	)
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		for _, id := range append(append([]int64{}, req.Team1...), req.Team2...) {
			membership, err := apiutil.LoadMembership(ctx, txdb.Queries, id, club.ID)
			if err != nil {
				return err
			}
			if membership == nil || membership.Status != models.MembershipActive {
				return apiutil.HandlerError{
					Status:  http.StatusBadRequest,
					Message: fmt.Sprintf("player %d is not an active member of this club", id),
				}
			}
		}

		bookingID := apiutil.ToNullInt64(req.BookingID)
		if bookingID.Valid {
			booking, err := txdb.Queries.GetBooking(ctx, bookingID.Int64)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("load booking: %w", err)
			}
			if err != nil || booking.ClubID != club.ID {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "booking_id does not belong to this club"}
			}
		}

		var err error
		created, err = txdb.Queries.CreateMatchResult(ctx, dbgen.CreateMatchResultParams{
			ClubID:      club.ID,
			BookingID:   bookingID,
			PlayedAt:    playedAt,
			Score:       score.String(),
			WinningTeam: int64(score.Winner()),
			RecordedBy:  user.ID,
		})
		if err != nil {
			return fmt.Errorf("create match result: %w", err)
		}
		for team, ids := range [][]int64{req.Team1, req.Team2} {
			for _, id := range ids {
				if err := txdb.Queries.AddMatchResultPlayer(ctx, dbgen.AddMatchResultPlayerParams{
					MatchID: created.ID,
					UserID:  id,
					Team:    int64(team + 1),
				}); err != nil {
					return fmt.Errorf("add match player: %w", err)
				}
			}
		}
		players, err = txdb.Queries.ListMatchResultPlayers(ctx, club.ID)
		if err != nil {
			return fmt.Errorf("list match players: %w", err)
		}
		return nil
	})
	if err != nil {
		var handlerErr apiutil.HandlerError
		if errors.As(err, &handlerErr) {
			http.Error(w, handlerErr.Message, handlerErr.Status)
			return
		}
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to record match")
		http.Error(w, "Failed to record match", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int64("club_id", club.ID).
		Int64("match_id", created.ID).
		Int64("recorded_by", user.ID).
		Str("score", created.Score).
		Msg("Match recorded")

	resp := newMatchResponse(created, playersByMatch(players)[created.ID])
	if err := apiutil.WriteJSON(w, http.StatusCreated, resp); err != nil {
		logger.Error().Err(err).Int64("match_id", created.ID).Msg("Failed to write match response")
	}
}

// GET /api/v1/clubs/{club_id}/matches?page=&page_size=
// Newest first.
func HandleListMatches(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	page, pageSize := apiutil.Pagination(r, defaultMatchesPageSize, maxMatchesPageSize)
	rows, err := q.ListMatchResults(ctx, dbgen.ListMatchResultsParams{
		ClubID: club.ID,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list matches")
		http.Error(w, "Failed to list matches", http.StatusInternalServerError)
		return
	}
	playerRows, err := q.ListMatchResultPlayers(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list match players")
		http.Error(w, "Failed to list matches", http.StatusInternalServerError)
		return
	}

	byMatch := playersByMatch(playerRows)
	resp := make([]matchResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, newMatchResponse(row, byMatch[row.ID]))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"matches":   resp,
		"page":      page,
		"page_size": pageSize,
	}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write matches response")
	}
}

// DELETE /api/v1/clubs/{club_id}/matches/{match_id}
func HandleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	user := apiutil.RequireAuthenticated(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	matchID, err := apiutil.PathID(r, "match_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	match, err := q.GetMatchResult(ctx, dbgen.GetMatchResultParams{ID: matchID, ClubID: club.ID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to load match")
		http.Error(w, "Failed to delete match", http.StatusInternalServerError)
		return
	}

	if match.RecordedBy != user.ID {
		role, _, err := apiutil.ClubRole(ctx, q, club.ID)
		if err != nil {
			logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to resolve club role")
			http.Error(w, "Failed to delete match", http.StatusInternalServerError)
			return
		}
		if !role.IsAdmin() {
			logger.Warn().Int64("match_id", matchID).Int64("user_id", user.ID).Msg("Match delete denied")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	deleted, err := q.DeleteMatchResult(ctx, dbgen.DeleteMatchResultParams{ID: matchID, ClubID: club.ID})
	if err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to delete match")
		http.Error(w, "Failed to delete match", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("match_id", matchID).Int64("user_id", user.ID).Msg("Match deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/clubs/{club_id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	standings, err := matchstats.CalculateClubStandings(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to calculate standings")
		http.Error(w, "Failed to calculate standings", http.StatusInternalServerError)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": standings}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write standings response")
	}
}

func playedIn(userID int64, teams ...[]int64) bool {
	for _, team := range teams {
		for _, id := range team {
			if id == userID {
				return true
			}
		}
	}
	return false
}

type matchPlayers struct {
	team1 []matchstats.Player
	team2 []matchstats.Player
}

func playersByMatch(rows []dbgen.ListMatchResultPlayersRow) map[int64]matchPlayers {
	byMatch := make(map[int64]matchPlayers)
	for _, row := range rows {
		entry := byMatch[row.MatchID]
		player := matchstats.Player{UserID: row.UserID, Name: row.FirstName + " " + row.LastName}
		if row.Team == 1 {
			entry.team1 = append(entry.team1, player)
		} else {
			entry.team2 = append(entry.team2, player)
		}
		byMatch[row.MatchID] = entry
	}
	return byMatch
}

func newMatchResponse(row dbgen.MatchResult, players matchPlayers) matchResponse {
	resp := matchResponse{
		ID:          row.ID,
		ClubID:      row.ClubID,
		PlayedAt:    row.PlayedAt.UTC(),
		Score:       row.Score,
		WinningTeam: row.WinningTeam,
		RecordedBy:  row.RecordedBy,
		Team1:       players.team1,
		Team2:       players.team2,
		CreatedAt:   row.CreatedAt,
	}
	if row.BookingID.Valid {
		id := row.BookingID.Int64
		resp.BookingID = &id
	}
	if score, err := matchstats.ParseScore(row.Score); err == nil {
		resp.Sets = score.Sets
	}
	if resp.Team1 == nil {
		resp.Team1 = []matchstats.Player{}
	}
	if resp.Team2 == nil {
		resp.Team2 = []matchstats.Player{}
	}
	return resp
}

func loadQueries() *dbgen.Queries {
	return queries
}
