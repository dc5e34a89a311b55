package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

// CreateClub inserts an active club in UTC with the schema defaults.
func CreateClub(t *testing.T, database *db.DB, slug string) dbgen.Club {
	t.Helper()

	club, err := database.Queries.CreateClub(context.Background(), dbgen.CreateClubParams{
		Name:     strings.ToUpper(slug[:1]) + slug[1:] + " Club",
		Slug:     slug,
		Timezone: "UTC",
	})
	if err != nil {
		t.Fatalf("create club %s: %v", slug, err)
	}
	return club
}

func CreateUser(t *testing.T, database *db.DB, email string) dbgen.User {
	t.Helper()

	local := strings.SplitN(email, "@", 2)[0]
	user, err := database.Queries.CreateUser(context.Background(), dbgen.CreateUserParams{
		Email:     email,
		FirstName: strings.ToUpper(local[:1]) + local[1:],
		LastName:  "Player",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// AddMember gives userID an active role in clubID.
func AddMember(t *testing.T, database *db.DB, userID, clubID int64, role models.Role) {
	t.Helper()

	_, err := database.Queries.UpsertUserClubRole(context.Background(), dbgen.UpsertUserClubRoleParams{
		UserID: userID,
		ClubID: clubID,
		Role:   role.String(),
		Status: models.MembershipActive,
	})
	if err != nil {
		t.Fatalf("add member %d to club %d: %v", userID, clubID, err)
	}
}

func CreateCourt(t *testing.T, database *db.DB, clubID, number int64) dbgen.Court {
	t.Helper()

	court, err := database.Queries.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		ClubID:      clubID,
		CourtNumber: number,
	})
	if err != nil {
		t.Fatalf("create court %d: %v", number, err)
	}
	return court
}

// SetOpenAllDay opens the club 00:00-23:59 every day so tests can book at
// any hour.
func SetOpenAllDay(t *testing.T, database *db.DB, clubID int64) {
	t.Helper()

	for day := int64(0); day < 7; day++ {
		_, err := database.Queries.UpsertOpeningHours(context.Background(), dbgen.UpsertOpeningHoursParams{
			ClubID:    clubID,
			DayOfWeek: day,
			OpensAt:   "00:00",
			ClosesAt:  "23:59",
		})
		if err != nil {
			t.Fatalf("set opening hours: %v", err)
		}
	}
}

// WithUser returns req carrying user as the signed-in user.
func WithUser(req *http.Request, user dbgen.User) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{
		ID:           user.ID,
		Email:        user.Email,
		IsSuperAdmin: user.IsSuperAdmin,
		SessionType:  authz.SessionTypePassword,
	}))
}

// MakeSuperAdmin flags user as a super admin and returns the updated row.
func MakeSuperAdmin(t *testing.T, database *db.DB, user dbgen.User) dbgen.User {
	t.Helper()

	if _, err := database.Queries.SetSuperAdmin(context.Background(), dbgen.SetSuperAdminParams{
		IsSuperAdmin: true,
		ID:           user.ID,
	}); err != nil {
		t.Fatalf("set super admin: %v", err)
	}
	user.IsSuperAdmin = true
	return user
}

// NullString is a valid sql.NullString for value.
func NullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: true}
}
