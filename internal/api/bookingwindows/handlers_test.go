package bookingwindows

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

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	"github.com/codr1/Courtside/internal/testutil"
)

func setupBookingWindowsTest(t *testing.T) (*db.DB, dbgen.Club, dbgen.User) {
	t.Helper()

	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	admin := testutil.CreateUser(t, database, "admin@test.com")
	testutil.AddMember(t, database, admin.ID, club.ID, models.RoleClubAdmin)

	queries = nil
	store = nil
	queriesOnce = sync.Once{}
	InitHandlers(database)

	t.Cleanup(func() {
		queries = nil
		store = nil
		queriesOnce = sync.Once{}
	})

	return database, club, admin
}

func windowRequestFor(club dbgen.Club, method, role, contentType, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/clubs/x/booking-windows/"+role, strings.NewReader(body))
	req.SetPathValue("club_id", fmt.Sprint(club.ID))
	if role != "" {
		req.SetPathValue(rolePathKey, role)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func getWindows(t *testing.T, club dbgen.Club) map[models.Role]windowSummary {
	t.Helper()

	rec := httptest.NewRecorder()
	HandleGetBookingWindows(rec, windowRequestFor(club, http.MethodGet, "", "", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("get windows status: %d", rec.Code)
	}
	var resp bookingWindowsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode windows: %v", err)
	}
	byRole := make(map[models.Role]windowSummary, len(resp.Windows))
	for _, window := range resp.Windows {
		byRole[window.Role] = window
	}
	return byRole
}

func TestHandleGetBookingWindows_Defaults(t *testing.T) {
	_, club, _ := setupBookingWindowsTest(t)

	windows := getWindows(t, club)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for role, days := range models.DefaultWindowDays {
		window := windows[role]
		if !window.IsDefault || window.MaxAdvanceDays != int64(days) {
			t.Fatalf("%s: unexpected window %+v", role, window)
		}
	}
}

func TestHandleSetAndDeleteBookingWindow(t *testing.T) {
	_, club, admin := setupBookingWindowsTest(t)

	req := testutil.WithUser(windowRequestFor(club, http.MethodPut, "member", "application/json", `{"max_advance_days":21}`), admin)
	rec := httptest.NewRecorder()
	HandleSetBookingWindow(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status: %d body: %s", rec.Code, rec.Body.String())
	}

	windows := getWindows(t, club)
	if member := windows[models.RoleMember]; member.IsDefault || member.MaxAdvanceDays != 21 {
		t.Fatalf("unexpected member window %+v", member)
	}
	if !windows[models.RoleVisitor].IsDefault {
		t.Fatal("visitor window should still be the default")
	}

	req = testutil.WithUser(windowRequestFor(club, http.MethodDelete, "MEMBER", "", ""), admin)
	rec = httptest.NewRecorder()
	HandleDeleteBookingWindow(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status: %d", rec.Code)
	}
	if member := getWindows(t, club)[models.RoleMember]; !member.IsDefault || member.MaxAdvanceDays != 7 {
		t.Fatalf("expected default member window after delete, got %+v", member)
	}

	rec = httptest.NewRecorder()
	HandleDeleteBookingWindow(rec, testutil.WithUser(windowRequestFor(club, http.MethodDelete, "MEMBER", "", ""), admin))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a missing window, got %d", rec.Code)
	}
}

func TestHandleSetBookingWindow_Validation(t *testing.T) {
	_, club, admin := setupBookingWindowsTest(t)

	tests := []struct {
		name string
		role string
		body string
	}{
		{"admin role has no window", "CLUB_ADMIN", `{"max_advance_days":5}`},
		{"unknown role", "OWNER", `{"max_advance_days":5}`},
		{"missing days", "COACH", `{}`},
		{"negative", "COACH", `{"max_advance_days":-1}`},
		{"too far", "COACH", `{"max_advance_days":365}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithUser(windowRequestFor(club, http.MethodPut, tt.role, "application/json", tt.body), admin)
			rec := httptest.NewRecorder()
			HandleSetBookingWindow(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleSetBookingWindow_ZeroDaysAllowed(t *testing.T) {
	_, club, admin := setupBookingWindowsTest(t)

	req := testutil.WithUser(windowRequestFor(club, http.MethodPut, "VISITOR", "application/x-www-form-urlencoded", "max_advance_days=0"), admin)
	rec := httptest.NewRecorder()
	HandleSetBookingWindow(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	if visitor := getWindows(t, club)[models.RoleVisitor]; visitor.IsDefault || visitor.MaxAdvanceDays != 0 {
		t.Fatalf("expected same-day visitor window, got %+v", visitor)
	}
}

func TestHandleSetBookingWindow_RequiresAdmin(t *testing.T) {
	database, club, _ := setupBookingWindowsTest(t)
	coach := testutil.CreateUser(t, database, "coach@test.com")
	testutil.AddMember(t, database, coach.ID, club.ID, models.RoleCoach)

	req := testutil.WithUser(windowRequestFor(club, http.MethodPut, "COACH", "application/json", `{"max_advance_days":30}`), coach)
	rec := httptest.NewRecorder()
	HandleSetBookingWindow(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleSaveBookingWindows(t *testing.T) {
	database, club, admin := setupBookingWindowsTest(t)

	req := testutil.WithUser(windowRequestFor(club, http.MethodPost, "", "application/x-www-form-urlencoded", "visitor=1&member=10&coach=30"), admin)
	rec := httptest.NewRecorder()
	HandleSaveBookingWindows(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}

	rows, err := database.Queries.ListBookingWindows(context.Background(), club.ID)
	if err != nil {
		t.Fatalf("list windows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 stored windows, got %d", len(rows))
	}

	req = testutil.WithUser(windowRequestFor(club, http.MethodPost, "", "application/x-www-form-urlencoded", "visitor=1&member=10"), admin)
	rec = httptest.NewRecorder()
	HandleSaveBookingWindows(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when a role is missing, got %d", rec.Code)
	}
	if coach := getWindows(t, club)[models.RoleCoach]; coach.MaxAdvanceDays != 30 {
		t.Fatalf("rejected save must not change windows, got %+v", coach)
	}
}
