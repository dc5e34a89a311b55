// internal/api/members/handlers.go
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/htmx"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

const membersQueryTimeout = 5 * time.Second

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once
)

var errLastAdmin = apiutil.HandlerError{Status: http.StatusConflict, Message: "A club must keep at least one admin"}

type roleRequest struct {
	Role string `json:"role"`
}

type membershipResponse struct {
	ClubID        int64  `json:"club_id"`
	UserID        int64  `json:"user_id"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	RequestedRole string `json:"requested_role,omitempty"`
}

type myClubResponse struct {
	ClubID int64  `json:"club_id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("members.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// POST /api/v1/clubs/{club_id}/members/join
// Joining makes the user a VISITOR. Higher roles are requested separately.
func HandleJoinClub(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	existing, err := apiutil.LoadMembership(ctx, q, user.ID, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to load membership")
		http.Error(w, "Failed to join club", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeFeedback(w, r, http.StatusConflict, "You are already a member of this club")
		return
	}

	row, err := q.UpsertUserClubRole(ctx, dbgen.UpsertUserClubRoleParams{
		UserID: user.ID,
		ClubID: club.ID,
		Role:   models.RoleVisitor.String(),
		Status: models.MembershipActive,
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to join club")
		http.Error(w, "Failed to join club", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("User joined club")
	writeMembership(w, r, http.StatusCreated, row, "Welcome to "+club.Name+".")
}

// POST /api/v1/clubs/{club_id}/members/request
// The current role stays in effect until an admin approves the request.
func HandleRequestRole(w http.ResponseWriter, r *http.Request) {
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

	req, err := decodeRoleRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	requested, err := models.ParseClubRole(req.Role)
	if err != nil || (requested != models.RoleMember && requested != models.RoleCoach) {
		writeFeedback(w, r, http.StatusBadRequest, "role must be MEMBER or COACH")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	current, err := apiutil.LoadMembership(ctx, q, user.ID, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to load membership")
		http.Error(w, "Failed to request role", http.StatusInternalServerError)
		return
	}
	role := models.RoleVisitor
	if current != nil {
		role = current.Role
	}
	if role.AtLeast(requested) {
		writeFeedback(w, r, http.StatusConflict, "You already have this role")
		return
	}

	row, err := q.UpsertUserClubRole(ctx, dbgen.UpsertUserClubRoleParams{
		UserID:        user.ID,
		ClubID:        club.ID,
		Role:          role.String(),
		Status:        models.MembershipPending,
		RequestedRole: apiutil.ToNullString(requested.String()),
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("Failed to request role")
		http.Error(w, "Failed to request role", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("user_id", user.ID).Str("requested_role", requested.String()).Msg("Role requested")
	writeMembership(w, r, http.StatusAccepted, row, "Your request was sent to the club admins.")
}

// DELETE /api/v1/clubs/{club_id}/members/me
func HandleLeaveClub(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	if err := removeMembership(ctx, club.ID, user.ID); err != nil {
		writeTxError(w, r, err, club.ID, "Failed to leave club")
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("user_id", user.ID).Msg("User left club")
	writeRemoved(w, r, "You left "+club.Name+".")
}

// GET /api/v1/clubs/{club_id}/members?q=&status=&page=&page_size=
func HandleListMembers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	filter, err := parseMemberFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, total, err := listMembers(ctx, q, club.ID, filter)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list members")
		http.Error(w, "Failed to list members", http.StatusInternalServerError)
		return
	}

	members := make([]memberResponse, 0, len(rows))
	for _, row := range rows {
		members = append(members, newMemberResponse(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"members":   members,
		"total":     total,
		"page":      filter.page,
		"page_size": filter.pageSize,
	}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write members response")
	}
}

// POST /api/v1/clubs/{club_id}/members/{user_id}/approve
func HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	resolveRequest(w, r, true)
}

// POST /api/v1/clubs/{club_id}/members/{user_id}/reject
func HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	resolveRequest(w, r, false)
}

func resolveRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, userID, ok := adminTarget(ctx, w, r, q)
	if !ok {
		return
	}

	var updated dbgen.UserClubRole
	err := store.RunInTx(ctx, func(txdb *appdb.DB) error {
		target, err := loadTarget(ctx, txdb.Queries, club.ID, userID)
		if err != nil {
			return err
		}
		if target.Status != models.MembershipPending || !target.RequestedRole.Valid {
			return apiutil.HandlerError{Status: http.StatusConflict, Message: "No pending request for this member"}
		}
		role := target.Role
		if approve {
			role = target.RequestedRole.String
		}
		updated, err = txdb.Queries.UpsertUserClubRole(ctx, dbgen.UpsertUserClubRoleParams{
			UserID: userID,
			ClubID: club.ID,
			Role:   role,
			Status: models.MembershipActive,
		})
		if err != nil {
			return fmt.Errorf("resolve role request: %w", err)
		}
		return nil
	})
	if err != nil {
		writeTxError(w, r, err, club.ID, "Failed to update membership")
		return
	}

	message := "Request rejected."
	if approve {
		message = "Request approved."
	}
	logger.Info().Int64("club_id", club.ID).Int64("user_id", userID).Bool("approved", approve).Msg("Role request resolved")
	writeMembership(w, r, http.StatusOK, updated, message)
}

// PUT /api/v1/clubs/{club_id}/members/{user_id}/role
// Setting a role clears any pending request.
func HandleSetRole(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeRoleRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	role, err := models.ParseClubRole(req.Role)
	if err != nil {
		writeFeedback(w, r, http.StatusBadRequest, "role must be VISITOR, MEMBER, COACH or CLUB_ADMIN")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, userID, ok := adminTarget(ctx, w, r, q)
	if !ok {
		return
	}

	var updated dbgen.UserClubRole
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		target, err := loadTarget(ctx, txdb.Queries, club.ID, userID)
		if err != nil {
			return err
		}
		if role != models.RoleClubAdmin {
			if err := guardLastAdmin(ctx, txdb.Queries, target); err != nil {
				return err
			}
		}
		updated, err = txdb.Queries.UpsertUserClubRole(ctx, dbgen.UpsertUserClubRoleParams{
			UserID: userID,
			ClubID: club.ID,
			Role:   role.String(),
			Status: models.MembershipActive,
		})
		if err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return nil
	})
	if err != nil {
		writeTxError(w, r, err, club.ID, "Failed to update membership")
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("user_id", userID).Str("role", role.String()).Msg("Member role set")
	writeMembership(w, r, http.StatusOK, updated, "Role updated.")
}

// DELETE /api/v1/clubs/{club_id}/members/{user_id}
func HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	club, userID, ok := adminTarget(ctx, w, r, q)
	if !ok {
		return
	}

	if err := removeMembership(ctx, club.ID, userID); err != nil {
		writeTxError(w, r, err, club.ID, "Failed to remove member")
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("user_id", userID).Msg("Member removed")
	writeRemoved(w, r, "Member removed.")
}

// GET /api/v1/me/clubs
func HandleListMyClubs(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	rows, err := q.ListUserClubs(ctx, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list user clubs")
		http.Error(w, "Failed to list clubs", http.StatusInternalServerError)
		return
	}
	clubs := make([]myClubResponse, 0, len(rows))
	for _, row := range rows {
		clubs = append(clubs, myClubResponse{
			ClubID: row.ClubID,
			Name:   row.Name,
			Slug:   row.Slug,
			Role:   row.Role,
			Status: row.Status,
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"clubs": clubs}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write clubs response")
	}
}

// adminTarget loads the club, checks the caller is a club admin and parses
// the {user_id} path value.
func adminTarget(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries) (dbgen.Club, int64, bool) {
	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return dbgen.Club{}, 0, false
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return dbgen.Club{}, 0, false
	}
	userID, err := apiutil.PathID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dbgen.Club{}, 0, false
	}
	return club, userID, true
}

func loadTarget(ctx context.Context, q *dbgen.Queries, clubID, userID int64) (dbgen.UserClubRole, error) {
	row, err := q.GetUserClubRole(ctx, dbgen.GetUserClubRoleParams{UserID: userID, ClubID: clubID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.UserClubRole{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Member not found", Err: err}
		}
		return dbgen.UserClubRole{}, fmt.Errorf("load member: %w", err)
	}
	return row, nil
}

// guardLastAdmin fails when target is the club's only active admin.
func guardLastAdmin(ctx context.Context, q *dbgen.Queries, target dbgen.UserClubRole) error {
	if target.Role != models.RoleClubAdmin.String() || target.Status != models.MembershipActive {
		return nil
	}
	admins, err := q.CountClubAdmins(ctx, target.ClubID)
	if err != nil {
		return fmt.Errorf("count club admins: %w", err)
	}
	if admins <= 1 {
		return errLastAdmin
	}
	return nil
}

func removeMembership(ctx context.Context, clubID, userID int64) error {
	return store.RunInTx(ctx, func(txdb *appdb.DB) error {
		target, err := loadTarget(ctx, txdb.Queries, clubID, userID)
		if err != nil {
			return err
		}
		if err := guardLastAdmin(ctx, txdb.Queries, target); err != nil {
			return err
		}
		if _, err := txdb.Queries.DeleteUserClubRole(ctx, dbgen.DeleteUserClubRoleParams{UserID: userID, ClubID: clubID}); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		return nil
	})
}

func writeMembership(w http.ResponseWriter, r *http.Request, status int, row dbgen.UserClubRole, message string) {
	if htmx.IsRequest(r) && !apiutil.IsJSONRequest(r) {
		w.Header().Set("HX-Trigger", "refreshMembers")
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	resp := membershipResponse{
		ClubID:        row.ClubID,
		UserID:        row.UserID,
		Role:          row.Role,
		Status:        row.Status,
		RequestedRole: row.RequestedRole.String,
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", row.ClubID).Msg("Failed to write membership response")
	}
}

func writeRemoved(w http.ResponseWriter, r *http.Request, message string) {
	if htmx.IsRequest(r) && !apiutil.IsJSONRequest(r) {
		w.Header().Set("HX-Trigger", "refreshMembers")
		apiutil.WriteHTMLFeedback(w, http.StatusOK, message)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeFeedback(w http.ResponseWriter, r *http.Request, status int, message string) {
	if htmx.IsRequest(r) && !apiutil.IsJSONRequest(r) {
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	http.Error(w, message, status)
}

func writeTxError(w http.ResponseWriter, r *http.Request, err error, clubID int64, message string) {
	var handlerErr apiutil.HandlerError
	if errors.As(err, &handlerErr) {
		writeFeedback(w, r, handlerErr.Status, handlerErr.Message)
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Int64("club_id", clubID).Msg(message)
	http.Error(w, message, http.StatusInternalServerError)
}

func decodeRoleRequest(r *http.Request) (roleRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req roleRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return roleRequest{}, err
	}
	return roleRequest{Role: strings.TrimSpace(r.FormValue("role"))}, nil
}

func loadQueries() *dbgen.Queries {
	return queries
}
