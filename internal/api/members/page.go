// internal/api/members/page.go
package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/htmx"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	membertempl "github.com/codr1/Courtside/internal/templates/components/members"
	"github.com/codr1/Courtside/internal/templates/layouts"
)

const (
	defaultMembersPageSize = 25
	maxMembersPageSize     = 100
)

type memberResponse struct {
	UserID        int64     `json:"user_id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	RequestedRole string    `json:"requested_role,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
}

type memberFilter struct {
	search   string
	status   string
	page     int64
	pageSize int64
}

// GET /clubs/{slug}/admin/members
// htmx requests receive only the member list fragment.
func HandleMembersPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membersQueryTimeout)
	defer cancel()

	slug := strings.ToLower(strings.TrimSpace(r.PathValue("slug")))
	club, err := q.GetClubBySlug(ctx, slug)
	if err != nil || club.Status != models.ClubStatusActive {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("slug", slug).Msg("Failed to load club")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
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

	data := membertempl.ListData{
		ClubID:   club.ID,
		ClubSlug: club.Slug,
		Search:   filter.search,
		Status:   filter.status,
		Page:     filter.page,
		PageSize: filter.pageSize,
		Total:    total,
		Members:  membertempl.NewMembers(rows),
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, membertempl.List(data), nil, "Failed to render member list", "Failed to render list")
		return
	}

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load club branding")
		branding = models.DefaultBranding()
	}
	page := layouts.Page{Title: "Members", ClubName: club.Name, ClubSlug: club.Slug, Branding: branding}
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(page, membertempl.Page(data)), nil, "Failed to render members page", "Failed to render page")
}

func parseMemberFilter(r *http.Request) (memberFilter, error) {
	query := r.URL.Query()
	filter := memberFilter{search: strings.TrimSpace(query.Get("q"))}

	switch status := strings.ToLower(strings.TrimSpace(query.Get("status"))); status {
	case "", models.MembershipActive, models.MembershipPending:
		filter.status = status
	default:
		return memberFilter{}, fmt.Errorf("status must be %s or %s", models.MembershipActive, models.MembershipPending)
	}

	filter.page, filter.pageSize = apiutil.Pagination(r, defaultMembersPageSize, maxMembersPageSize)
	return filter, nil
}

func listMembers(ctx context.Context, q *dbgen.Queries, clubID int64, filter memberFilter) ([]dbgen.ListClubMembersRow, int64, error) {
	status := apiutil.ToNullString(filter.status)
	search := apiutil.ToNullString(filter.search)

	total, err := q.CountClubMembers(ctx, dbgen.CountClubMembersParams{
		ClubID:     clubID,
		Status:     status,
		SearchTerm: search,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}
	rows, err := q.ListClubMembers(ctx, dbgen.ListClubMembersParams{
		ClubID:     clubID,
		Status:     status,
		SearchTerm: search,
		Limit:      filter.pageSize,
		Offset:     (filter.page - 1) * filter.pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	return rows, total, nil
}

func newMemberResponse(row dbgen.ListClubMembersRow) memberResponse {
	return memberResponse{
		UserID:        row.UserID,
		Email:         row.Email,
		FirstName:     row.FirstName,
		LastName:      row.LastName,
		Phone:         row.Phone.String,
		Role:          row.Role,
		Status:        row.Status,
		RequestedRole: row.RequestedRole.String,
		JoinedAt:      row.CreatedAt,
	}
}
