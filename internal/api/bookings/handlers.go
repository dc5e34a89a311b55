// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/availability"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/email"
	"github.com/codr1/Courtside/internal/models"
)

const (
	bookingsQueryTimeout = 5 * time.Second
	maxListRangeDays     = 31
)

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	emailClient email.EmailSender
	queriesOnce sync.Once

	now = time.Now
)

type bookingRequest struct {
	CourtID   int64   `json:"court_id" validate:"required,gt=0"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	PlayerIDs []int64 `json:"player_ids" validate:"dive,gt=0"`
	Notes     string  `json:"notes" validate:"max=500"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

type playerResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type bookingResponse struct {
	ID             int64            `json:"id"`
	ClubID         int64            `json:"club_id"`
	CourtID        int64            `json:"court_id"`
	BookedByUserID int64            `json:"booked_by_user_id"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	Notes          string           `json:"notes,omitempty"`
	Status         string           `json:"status"`
	CancelledAt    *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason   string           `json:"cancel_reason,omitempty"`
	Players        []playerResponse `json:"players,omitempty"`
}

type upcomingBookingResponse struct {
	ID        int64     `json:"id"`
	ClubID    int64     `json:"club_id"`
	ClubName  string    `json:"club_name"`
	CourtID   int64     `json:"court_id"`
	Court     string    `json:"court"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Notes     string    `json:"notes,omitempty"`
}

// InitHandlers must be called during server startup before handling requests.
// A nil client disables booking emails.
func InitHandlers(database *appdb.DB, client email.EmailSender) {
	if database == nil {
		log.Warn().Msg("bookings.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
		emailClient = client
	})
}

// POST /api/v1/clubs/{club_id}/bookings
func HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
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

	req, err := decodeBookingRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	role, ok := bookingRole(ctx, w, r, q, club)
	if !ok {
		return
	}

	start, end, err := parseBookingTimes(club, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	players, err := resolvePlayers(ctx, q, user.ID, req.PlayerIDs)
	if err != nil {
		writeFieldError(w, r, err, club.ID)
		return
	}

	at := now().UTC()
	request := availability.BookingRequest{CourtID: req.CourtID, Start: start, End: end}
	var created dbgen.Booking
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		if !role.IsAdmin() {
			if err := checkActiveLimit(ctx, txdb.Queries, club, user.ID, at); err != nil {
				return err
			}
		}
		if err := checkSlot(ctx, txdb.Queries, club, role, request, at); err != nil {
			return err
		}

		var err error
		created, err = txdb.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
			ClubID:         club.ID,
			CourtID:        req.CourtID,
			BookedByUserID: user.ID,
			StartTime:      start,
			EndTime:        end,
			Notes:          strings.TrimSpace(req.Notes),
		})
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return addPlayers(ctx, txdb.Queries, created.ID, players)
	})
	if err != nil {
		writeTxError(w, r, err, club.ID, "Failed to create booking")
		return
	}

	logger.Info().
		Int64("club_id", club.ID).
		Int64("booking_id", created.ID).
		Int64("court_id", created.CourtID).
		Int64("user_id", user.ID).
		Str("role", role.String()).
		Time("start_time", created.StartTime).
		Msg("Booking created")

	notifyPlayers(ctx, q, club, created, email.BuildConfirmationEmail)
	writeBooking(ctx, w, r, q, http.StatusCreated, created, "Court booked.")
}

// GET /api/v1/clubs/{club_id}/bookings/{booking_id}
// Visible to the booker, its players and club admins.
func HandleGetBooking(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	booking, ok := loadBooking(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	role, _, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to load booking", http.StatusInternalServerError)
		return
	}
	resp, err := newBookingResponse(ctx, q, booking)
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to load booking players")
		http.Error(w, "Failed to load booking", http.StatusInternalServerError)
		return
	}
	if !authz.CanManageBooking(user, role, booking.BookedByUserID) && !hasPlayer(resp.Players, user.ID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to write booking response")
	}
}

// GET /api/v1/clubs/{club_id}/bookings?from=YYYY-MM-DD&to=YYYY-MM-DD
// Lists confirmed bookings overlapping the local dates, inclusive. Both
// default to today in the club's timezone.
func HandleListBookings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleMember); !ok {
		return
	}

	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load club timezone")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}
	today := availability.DateOf(now().In(loc))
	from, to, err := parseDateRange(r, today)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := q.ListBookingsForRange(ctx, dbgen.ListBookingsForRangeParams{
		ClubID:    club.ID,
		StartTime: from.At(0, loc).UTC(),
		EndTime:   to.AddDays(1).At(0, loc).UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	bookings := make([]bookingResponse, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, bookingFromRow(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"from":     from,
		"to":       to,
		"bookings": bookings,
	}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write bookings response")
	}
}

// GET /api/v1/me/bookings
// Upcoming bookings the user made or plays in, across clubs.
func HandleListMyBookings(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	rows, err := q.ListUpcomingBookingsForUser(ctx, dbgen.ListUpcomingBookingsForUserParams{
		Now:    now().UTC(),
		UserID: user.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list upcoming bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	bookings := make([]upcomingBookingResponse, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, upcomingBookingResponse{
			ID:        row.ID,
			ClubID:    row.ClubID,
			ClubName:  row.ClubName,
			CourtID:   row.CourtID,
			Court:     apiutil.CourtLabel(row.CourtNumber, ""),
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			Notes:     row.Notes,
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"bookings": bookings}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write upcoming bookings response")
	}
}

// PUT /api/v1/clubs/{club_id}/bookings/{booking_id}
// Moves or edits a confirmed booking. Players are replaced only when
// player_ids is sent.
func HandleUpdateBooking(w http.ResponseWriter, r *http.Request) {
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

	req, err := decodeBookingRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	booking, ok := loadBooking(ctx, w, r, q, club.ID)
	if !ok {
		return
	}
	role, ok := bookingRole(ctx, w, r, q, club)
	if !ok {
		return
	}
	if !authz.CanManageBooking(user, role, booking.BookedByUserID) {
		logger.Warn().Int64("booking_id", booking.ID).Int64("user_id", user.ID).Msg("Booking update denied")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if booking.Status != models.BookingConfirmed {
		http.Error(w, "Cancelled bookings cannot be changed", http.StatusConflict)
		return
	}

	start, end, err := parseBookingTimes(club, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var players []int64
	if req.PlayerIDs != nil {
		players, err = resolvePlayers(ctx, q, booking.BookedByUserID, req.PlayerIDs)
		if err != nil {
			writeFieldError(w, r, err, club.ID)
			return
		}
	}

	request := availability.BookingRequest{BookingID: booking.ID, CourtID: req.CourtID, Start: start, End: end}
	var updated dbgen.Booking
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		if err := checkSlot(ctx, txdb.Queries, club, role, request, now().UTC()); err != nil {
			return err
		}

		var err error
		updated, err = txdb.Queries.UpdateBooking(ctx, dbgen.UpdateBookingParams{
			CourtID:   req.CourtID,
			StartTime: start,
			EndTime:   end,
			Notes:     strings.TrimSpace(req.Notes),
			ID:        booking.ID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "Cancelled bookings cannot be changed", Err: err}
			}
			return fmt.Errorf("update booking: %w", err)
		}
		if players == nil {
			return nil
		}
		if err := txdb.Queries.DeleteBookingPlayers(ctx, booking.ID); err != nil {
			return fmt.Errorf("clear booking players: %w", err)
		}
		return addPlayers(ctx, txdb.Queries, booking.ID, players)
	})
	if err != nil {
		writeTxError(w, r, err, club.ID, "Failed to update booking")
		return
	}

	logger.Info().
		Int64("club_id", club.ID).
		Int64("booking_id", updated.ID).
		Int64("court_id", updated.CourtID).
		Int64("user_id", user.ID).
		Time("start_time", updated.StartTime).
		Msg("Booking updated")

	notifyPlayers(ctx, q, club, updated, email.BuildConfirmationEmail)
	writeBooking(ctx, w, r, q, http.StatusOK, updated, "Booking updated.")
}

// POST /api/v1/clubs/{club_id}/bookings/{booking_id}/cancel
// DELETE /api/v1/clubs/{club_id}/bookings/{booking_id}
// Owners may cancel until the booking starts; club admins at any time.
func HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
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

	req, err := decodeCancelRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	booking, ok := loadBooking(ctx, w, r, q, club.ID)
	if !ok {
		return
	}
	role, _, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to cancel booking", http.StatusInternalServerError)
		return
	}
	if !authz.CanManageBooking(user, role, booking.BookedByUserID) {
		logger.Warn().Int64("booking_id", booking.ID).Int64("user_id", user.ID).Msg("Booking cancellation denied")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if booking.Status != models.BookingConfirmed {
		http.Error(w, "Booking is already cancelled", http.StatusConflict)
		return
	}

	at := now().UTC()
	if !role.IsAdmin() && !at.Before(booking.StartTime) {
		http.Error(w, "Bookings can only be cancelled before they start", http.StatusForbidden)
		return
	}

	reason := strings.TrimSpace(req.Reason)
	affected, err := q.CancelBooking(ctx, dbgen.CancelBookingParams{
		CancelledAt:  sql.NullTime{Time: at, Valid: true},
		CancelReason: apiutil.ToNullString(reason),
		ID:           booking.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to cancel booking")
		http.Error(w, "Failed to cancel booking", http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.Error(w, "Booking is already cancelled", http.StatusConflict)
		return
	}

	booking.Status = models.BookingCancelled
	booking.CancelledAt = sql.NullTime{Time: at, Valid: true}
	booking.CancelReason = apiutil.ToNullString(reason)

	logger.Info().
		Int64("club_id", club.ID).
		Int64("booking_id", booking.ID).
		Int64("user_id", user.ID).
		Str("role", role.String()).
		Msg("Booking cancelled")

	notifyPlayers(ctx, q, club, booking, func(details email.BookingDetails) email.Message {
		return email.BuildCancellationEmail(details, reason)
	})
	writeBooking(ctx, w, r, q, http.StatusOK, booking, "Booking cancelled.")
}

// bookingRole resolves the role the user books with. Users without a
// membership book as visitors only when the club allows it.
func bookingRole(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, club dbgen.Club) (models.Role, bool) {
	role, membership, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", club.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
		return "", false
	}
	if membership == nil && !role.IsAdmin() && !club.AllowVisitorBookings {
		http.Error(w, "Join the club to book courts", http.StatusForbidden)
		return "", false
	}
	return role, true
}

// checkSlot validates req against the club's schedule as read inside the
// transaction, then re-checks overlap in SQL.
func checkSlot(ctx context.Context, q *dbgen.Queries, club dbgen.Club, role models.Role, req availability.BookingRequest, at time.Time) error {
	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		return err
	}
	schedule, err := apiutil.LoadSchedule(ctx, q, club, availability.DateOf(req.Start.In(loc)), availability.DateOf(req.End.In(loc)))
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	if err := schedule.CheckBooking(req, role, at); err != nil {
		var violation *availability.Violation
		if errors.As(err, &violation) {
			return apiutil.HandlerError{Status: apiutil.ViolationStatus(err), Message: violation.Message, Err: err}
		}
		return err
	}

	overlapping, err := q.CountOverlappingBookings(ctx, dbgen.CountOverlappingBookingsParams{
		CourtID:   req.CourtID,
		ExcludeID: req.BookingID,
		StartTime: req.Start,
		EndTime:   req.End,
	})
	if err != nil {
		return fmt.Errorf("count overlapping bookings: %w", err)
	}
	if overlapping > 0 {
		return apiutil.HandlerError{Status: http.StatusConflict, Message: "court is already booked for part of that time"}
	}
	return nil
}

// checkActiveLimit fails with 409 once userID holds the club's maximum number
// of upcoming bookings.
func checkActiveLimit(ctx context.Context, q *dbgen.Queries, club dbgen.Club, userID int64, at time.Time) error {
	active, err := q.CountActiveBookingsForUser(ctx, dbgen.CountActiveBookingsForUserParams{
		ClubID:         club.ID,
		BookedByUserID: userID,
		Now:            at,
	})
	if err != nil {
		return fmt.Errorf("count active bookings: %w", err)
	}
	if active >= club.MaxActiveBookings {
		return apiutil.HandlerError{
			Status:  http.StatusConflict,
			Message: fmt.Sprintf("You already have %d upcoming bookings at this club", active),
		}
	}
	return nil
}

// resolvePlayers returns the booking's player ids with the booker first and
// duplicates removed. Every other player must be an existing user.
func resolvePlayers(ctx context.Context, q *dbgen.Queries, bookerID int64, requested []int64) ([]int64, error) {
	players := []int64{bookerID}
	for _, id := range requested {
		if !slices.Contains(players, id) {
			players = append(players, id)
		}
	}
	if len(players) > models.MaxBookingPlayers {
		return nil, apiutil.FieldError{
			Field:  "player_ids",
			Reason: fmt.Sprintf("must list at most %d players including the booker", models.MaxBookingPlayers),
		}
	}
	for _, id := range players[1:] {
		if _, err := q.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apiutil.FieldError{Field: "player_ids", Reason: fmt.Sprintf("contains unknown user %d", id)}
			}
			return nil, fmt.Errorf("load player %d: %w", id, err)
		}
	}
	return players, nil
}

func addPlayers(ctx context.Context, q *dbgen.Queries, bookingID int64, players []int64) error {
	for _, userID := range players {
		if err := q.AddBookingPlayer(ctx, dbgen.AddBookingPlayerParams{BookingID: bookingID, UserID: userID}); err != nil {
			return fmt.Errorf("add player %d: %w", userID, err)
		}
	}
	return nil
}

func parseBookingTimes(club dbgen.Club, req bookingRequest) (time.Time, time.Time, error) {
	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := apiutil.ParseTimestamp(req.StartTime, "start_time", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := apiutil.ParseTimestamp(req.EndTime, "end_time", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time must be after start_time")
	}
	return start, end, nil
}

func parseDateRange(r *http.Request, today availability.Date) (availability.Date, availability.Date, error) {
	from := today
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			return availability.Date{}, availability.Date{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	to := from
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			return availability.Date{}, availability.Date{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		to = parsed
	}
	if to.Before(from) {
		return availability.Date{}, availability.Date{}, fmt.Errorf("to must not be before from")
	}
	if from.AddDays(maxListRangeDays).Before(to) {
		return availability.Date{}, availability.Date{}, fmt.Errorf("date range must be at most %d days", maxListRangeDays)
	}
	return from, to, nil
}

// notifyPlayers emails everyone on booking. Failures are logged only.
func notifyPlayers(ctx context.Context, q *dbgen.Queries, club dbgen.Club, booking dbgen.Booking, build func(email.BookingDetails) email.Message) {
	if emailClient == nil {
		return
	}
	logger := log.Ctx(ctx)

	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		logger.Warn().Err(err).Int64("club_id", club.ID).Msg("Using UTC for booking email")
		loc = time.UTC
	}
	details, recipients, err := email.LoadBookingDetails(ctx, q, club.Name, loc, booking)
	if err != nil {
		logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to load booking for email")
		return
	}
	email.SendToUsers(ctx, q, emailClient, recipients, build(details), email.FromAddress(club), logger)
}

func loadBooking(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, clubID int64) (dbgen.Booking, bool) {
	bookingID, err := apiutil.PathID(r, "booking_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dbgen.Booking{}, false
	}
	booking, err := q.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Booking not found", http.StatusNotFound)
			return dbgen.Booking{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("booking_id", bookingID).Msg("Failed to load booking")
		http.Error(w, "Failed to load booking", http.StatusInternalServerError)
		return dbgen.Booking{}, false
	}
	if booking.ClubID != clubID {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return dbgen.Booking{}, false
	}
	return booking, true
}

func writeTxError(w http.ResponseWriter, r *http.Request, err error, clubID int64, message string) {
	var handlerErr apiutil.HandlerError
	if errors.As(err, &handlerErr) {
		http.Error(w, handlerErr.Message, handlerErr.Status)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Int64("club_id", clubID).Msg(message)
	http.Error(w, message, http.StatusInternalServerError)
}

func writeFieldError(w http.ResponseWriter, r *http.Request, err error, clubID int64) {
	var fieldErr apiutil.FieldError
	if errors.As(err, &fieldErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Int64("club_id", clubID).Msg("Failed to validate booking players")
	http.Error(w, "Failed to validate players", http.StatusInternalServerError)
}

func writeBooking(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, status int, booking dbgen.Booking, message string) {
	w.Header().Set("HX-Trigger", "refreshAvailability")
	if !apiutil.IsJSONRequest(r) {
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}

	resp, err := newBookingResponse(ctx, q, booking)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Int64("booking_id", booking.ID).Msg("Failed to load booking players for response")
		resp = bookingFromRow(booking)
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to write booking response")
	}
}

func newBookingResponse(ctx context.Context, q *dbgen.Queries, booking dbgen.Booking) (bookingResponse, error) {
	resp := bookingFromRow(booking)
	rows, err := q.ListBookingPlayers(ctx, booking.ID)
	if err != nil {
		return resp, err
	}
	resp.Players = make([]playerResponse, 0, len(rows))
	for _, row := range rows {
		resp.Players = append(resp.Players, playerResponse{
			UserID: row.UserID,
			Name:   strings.TrimSpace(row.FirstName + " " + row.LastName),
		})
	}
	return resp, nil
}

func bookingFromRow(booking dbgen.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             booking.ID,
		ClubID:         booking.ClubID,
		CourtID:        booking.CourtID,
		BookedByUserID: booking.BookedByUserID,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Notes:          booking.Notes,
		Status:         booking.Status,
	}
	if booking.CancelledAt.Valid {
		cancelledAt := booking.CancelledAt.Time
		resp.CancelledAt = &cancelledAt
	}
	if booking.CancelReason.Valid {
		resp.CancelReason = booking.CancelReason.String
	}
	return resp
}

func hasPlayer(players []playerResponse, userID int64) bool {
	return slices.ContainsFunc(players, func(p playerResponse) bool { return p.UserID == userID })
}

func decodeBookingRequest(r *http.Request) (bookingRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req bookingRequest
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return bookingRequest{}, err
	}

	req := bookingRequest{
		StartTime: r.FormValue("start_time"),
		EndTime:   r.FormValue("end_time"),
		Notes:     r.FormValue("notes"),
	}
	courtID, err := apiutil.ParsePositiveInt64Field(r.FormValue("court_id"), "court_id")
	if err != nil {
		return bookingRequest{}, err
	}
	req.CourtID = courtID

	if _, sent := r.Form["player_ids"]; sent {
		req.PlayerIDs = []int64{}
	}
	for _, raw := range r.Form["player_ids"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		playerID, err := apiutil.ParsePositiveInt64Field(raw, "player_ids")
		if err != nil {
			return bookingRequest{}, err
		}
		req.PlayerIDs = append(req.PlayerIDs, playerID)
	}
	return req, nil
}

func decodeCancelRequest(r *http.Request) (cancelRequest, error) {
	var req cancelRequest
	if apiutil.IsJSONRequest(r) {
		if r.ContentLength == 0 {
			return req, nil
		}
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Reason = r.FormValue("reason")
	return req, nil
}

func loadQueries() *dbgen.Queries {
	return queries
}
