package courts

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	"github.com/codr1/Courtside/internal/testutil"
)

type courtsTestContext struct {
	db     *db.DB
	club   dbgen.Club
	admin  dbgen.User
	member dbgen.User
}

func setupCourtsTest(t *testing.T) courtsTestContext {
	t.Helper()

	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	admin := testutil.CreateUser(t, database, "admin@test.com")
	member := testutil.CreateUser(t, database, "member@test.com")
	testutil.AddMember(t, database, admin.ID, club.ID, models.RoleClubAdmin)
	testutil.AddMember(t, database, member.ID, club.ID, models.RoleMember)

	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database.Queries)

	fixed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }

	t.Cleanup(func() {
		queries = nil
		queriesOnce = sync.Once{}
		now = time.Now
	})

	return courtsTestContext{db: database, club: club, admin: admin, member: member}
}

func courtRequestFor(t *testing.T, method, path string, clubID int64, courtID int64, body any) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(string(payload)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
		req.Header.Set("Accept", "application/json")
	}
	req.SetPathValue("club_id", fmt.Sprint(clubID))
	if courtID != 0 {
		req.SetPathValue("court_id", fmt.Sprint(courtID))
	}
	return req
}

func TestHandleCreateCourt(t *testing.T) {
	tc := setupCourtsTest(t)

	body := map[string]any{"name": "Center", "court_number": 1, "surface": "hard", "is_indoor": true}
	req := testutil.WithUser(courtRequestFor(t, http.MethodPost, "/api/v1/clubs/1/courts", tc.club.ID, 0, body), tc.admin)
	rec := httptest.NewRecorder()

	HandleCreateCourt(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var court dbgen.Court
	if err := json.NewDecoder(rec.Body).Decode(&court); err != nil {
		t.Fatalf("decode court: %v", err)
	}
	if court.CourtNumber != 1 || court.Name != "Center" || !court.IsIndoor || !court.IsActive {
		t.Fatalf("unexpected court %+v", court)
	}

	req = testutil.WithUser(courtRequestFor(t, http.MethodPost, "/api/v1/clubs/1/courts", tc.club.ID, 0, body), tc.admin)
	rec = httptest.NewRecorder()
	HandleCreateCourt(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate number, got %d", rec.Code)
	}
}

func TestHandleCreateCourtAccess(t *testing.T) {
	tc := setupCourtsTest(t)
	body := map[string]any{"court_number": 2}

	rec := httptest.NewRecorder()
	HandleCreateCourt(rec, courtRequestFor(t, http.MethodPost, "/", tc.club.ID, 0, body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleCreateCourt(rec, testutil.WithUser(courtRequestFor(t, http.MethodPost, "/", tc.club.ID, 0, body), tc.member))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleCreateCourt(rec, testutil.WithUser(courtRequestFor(t, http.MethodPost, "/", 9999, 0, body), tc.admin))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown club, got %d", rec.Code)
	}
}

func TestHandleCreateCourtValidation(t *testing.T) {
	tc := setupCourtsTest(t)

	req := testutil.WithUser(courtRequestFor(t, http.MethodPost, "/", tc.club.ID, 0, map[string]any{"court_number": 0}), tc.admin)
	rec := httptest.NewRecorder()
	HandleCreateCourt(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "court_number") {
		t.Fatalf("expected court_number error, got %q", rec.Body.String())
	}
}

func TestHandleListCourtsHidesInactiveFromMembers(t *testing.T) {
	tc := setupCourtsTest(t)
	testutil.CreateCourt(t, tc.db, tc.club.ID, 1)
	inactive := testutil.CreateCourt(t, tc.db, tc.club.ID, 2)

	req := testutil.WithUser(courtRequestFor(t, http.MethodPost, "/", tc.club.ID, inactive.ID, nil), tc.admin)
	rec := httptest.NewRecorder()
	HandleDeactivateCourt(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d", rec.Code)
	}

	count := func(user *dbgen.User) int {
		req := courtRequestFor(t, http.MethodGet, "/", tc.club.ID, 0, nil)
		if user != nil {
			req = testutil.WithUser(req, *user)
		}
		rec := httptest.NewRecorder()
		HandleListCourts(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("list: expected 200, got %d", rec.Code)
		}
		var resp struct {
			Courts []dbgen.Court `json:"courts"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode courts: %v", err)
		}
		return len(resp.Courts)
	}

	if got := count(nil); got != 1 {
		t.Fatalf("anonymous: expected 1 court, got %d", got)
	}
	if got := count(&tc.member); got != 1 {
		t.Fatalf("member: expected 1 court, got %d", got)
	}
	if got := count(&tc.admin); got != 2 {
		t.Fatalf("admin: expected 2 courts, got %d", got)
	}
}

func TestHandleUpdateCourtKeepsActiveState(t *testing.T) {
	tc := setupCourtsTest(t)
	court := testutil.CreateCourt(t, tc.db, tc.club.ID, 1)

	body := map[string]any{"name": "Stadium", "court_number": 5, "surface": "clay"}
	req := testutil.WithUser(courtRequestFor(t, http.MethodPut, "/", tc.club.ID, court.ID, body), tc.admin)
	rec := httptest.NewRecorder()
	HandleUpdateCourt(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := tc.db.Queries.GetCourt(context.Background(), dbgen.GetCourtParams{ID: court.ID, ClubID: tc.club.ID})
	if err != nil {
		t.Fatalf("get court: %v", err)
	}
	if updated.Name != "Stadium" || updated.CourtNumber != 5 || updated.Surface != "clay" || !updated.IsActive {
		t.Fatalf("unexpected court %+v", updated)
	}
}

func TestHandleDeleteCourt(t *testing.T) {
	tc := setupCourtsTest(t)
	ctx := context.Background()

	free := testutil.CreateCourt(t, tc.db, tc.club.ID, 1)
	busy := testutil.CreateCourt(t, tc.db, tc.club.ID, 2)
	used := testutil.CreateCourt(t, tc.db, tc.club.ID, 3)

	current := now()
	for _, booking := range []struct {
		courtID int64
		start   time.Time
	}{
		{busy.ID, current.Add(24 * time.Hour)},
		{used.ID, current.Add(-48 * time.Hour)},
	} {
		if _, err := tc.db.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
			ClubID:         tc.club.ID,
			CourtID:        booking.courtID,
			BookedByUserID: tc.member.ID,
			StartTime:      booking.start,
			EndTime:        booking.start.Add(time.Hour),
		}); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	tests := []struct {
		name   string
		court  int64
		status int
	}{
		{"upcoming bookings", busy.ID, http.StatusConflict},
		{"booking history", used.ID, http.StatusConflict},
		{"unused", free.ID, http.StatusNoContent},
		{"already deleted", free.ID, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(courtRequestFor(t, http.MethodDelete, "/", tc.club.ID, tt.court, nil), tc.admin)
			rec := httptest.NewRecorder()
			HandleDeleteCourt(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateCourtForm(t *testing.T) {
	tc := setupCourtsTest(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("court_number=4&name=Back&is_indoor=on"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("club_id", fmt.Sprint(tc.club.ID))
	req = testutil.WithUser(req, tc.admin)
	rec := httptest.NewRecorder()

	HandleCreateCourt(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("HX-Trigger") != "refreshCourts" {
		t.Fatalf("expected refreshCourts trigger, got %q", rec.Header().Get("HX-Trigger"))
	}
	if !strings.Contains(rec.Body.String(), "Court created.") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
