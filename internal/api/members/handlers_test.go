package members

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

type membersFixture struct {
	db     *db.DB
	club   dbgen.Club
	admin  dbgen.User
	member dbgen.User
	newbie dbgen.User
}

func setupMembersTest(t *testing.T) membersFixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	f := membersFixture{
		db:     database,
		club:   club,
		admin:  testutil.CreateUser(t, database, "admin@test.com"),
		member: testutil.CreateUser(t, database, "member@test.com"),
		newbie: testutil.CreateUser(t, database, "newbie@test.com"),
	}
	testutil.AddMember(t, database, f.admin.ID, club.ID, models.RoleClubAdmin)
	testutil.AddMember(t, database, f.member.ID, club.ID, models.RoleMember)

	queries = nil
	store = nil
	queriesOnce = sync.Once{}
	InitHandlers(database)

	t.Cleanup(func() {
		queries = nil
		store = nil
		queriesOnce = sync.Once{}
	})

	return f
}

func (f membersFixture) request(method string, targetUserID int64, user *dbgen.User, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/clubs/x/members", strings.NewReader(body))
	req.SetPathValue("club_id", fmt.Sprint(f.club.ID))
	if targetUserID != 0 {
		req.SetPathValue("user_id", fmt.Sprint(targetUserID))
	}
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	return req
}

func (f membersFixture) membership(t *testing.T, userID int64) dbgen.UserClubRole {
	t.Helper()

	row, err := f.db.Queries.GetUserClubRole(context.Background(), dbgen.GetUserClubRoleParams{UserID: userID, ClubID: f.club.ID})
	if err != nil {
		t.Fatalf("load membership for %d: %v", userID, err)
	}
	return row
}

func (f membersFixture) hasMembership(userID int64) bool {
	_, err := f.db.Queries.GetUserClubRole(context.Background(), dbgen.GetUserClubRoleParams{UserID: userID, ClubID: f.club.ID})
	return err == nil
}

func TestHandleJoinClub(t *testing.T) {
	f := setupMembersTest(t)

	rec := httptest.NewRecorder()
	HandleJoinClub(rec, f.request(http.MethodPost, 0, &f.newbie, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	var resp membershipResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Role != models.RoleVisitor.String() || resp.Status != models.MembershipActive {
		t.Fatalf("unexpected membership %+v", resp)
	}

	rec = httptest.NewRecorder()
	HandleJoinClub(rec, f.request(http.MethodPost, 0, &f.newbie, ""))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join: expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleJoinClub(rec, f.request(http.MethodPost, 0, nil, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous join: expected 401, got %d", rec.Code)
	}
}

func TestHandleRequestRoleAndApprove(t *testing.T) {
	f := setupMembersTest(t)

	rec := httptest.NewRecorder()
	HandleRequestRole(rec, f.request(http.MethodPost, 0, &f.newbie, `{"role":"member"}`))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("request status: %d body: %s", rec.Code, rec.Body.String())
	}
	pending := f.membership(t, f.newbie.ID)
	if pending.Role != models.RoleVisitor.String() || pending.Status != models.MembershipPending || pending.RequestedRole.String != models.RoleMember.String() {
		t.Fatalf("unexpected pending membership %+v", pending)
	}

	rec = httptest.NewRecorder()
	HandleApproveRequest(rec, f.request(http.MethodPost, f.newbie.ID, &f.member, ""))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member approving: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleApproveRequest(rec, f.request(http.MethodPost, f.newbie.ID, &f.admin, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status: %d body: %s", rec.Code, rec.Body.String())
	}
	approved := f.membership(t, f.newbie.ID)
	if approved.Role != models.RoleMember.String() || approved.Status != models.MembershipActive || approved.RequestedRole.Valid {
		t.Fatalf("unexpected approved membership %+v", approved)
	}

	rec = httptest.NewRecorder()
	HandleApproveRequest(rec, f.request(http.MethodPost, f.newbie.ID, &f.admin, ""))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", rec.Code)
	}
}

func TestHandleRequestRoleRejected(t *testing.T) {
	f := setupMembersTest(t)

	tests := []struct {
		name   string
		user   *dbgen.User
		body   string
		status int
	}{
		{"anonymous", nil, `{"role":"MEMBER"}`, http.StatusUnauthorized},
		{"admin role", &f.newbie, `{"role":"CLUB_ADMIN"}`, http.StatusBadRequest},
		{"unknown role", &f.newbie, `{"role":"CAPTAIN"}`, http.StatusBadRequest},
		{"already member", &f.member, `{"role":"MEMBER"}`, http.StatusConflict},
		{"admin asks for coach", &f.admin, `{"role":"COACH"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleRequestRole(rec, f.request(http.MethodPost, 0, tt.user, tt.body))
			if rec.Code != tt.status {
				t.Fatalf("status: %d want %d body: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestHandleRejectRequest(t *testing.T) {
	f := setupMembersTest(t)

	rec := httptest.NewRecorder()
	HandleRequestRole(rec, f.request(http.MethodPost, 0, &f.member, `{"role":"COACH"}`))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("request status: %d body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HandleRejectRequest(rec, f.request(http.MethodPost, f.member.ID, &f.admin, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("reject status: %d body: %s", rec.Code, rec.Body.String())
	}
	row := f.membership(t, f.member.ID)
	if row.Role != models.RoleMember.String() || row.Status != models.MembershipActive || row.RequestedRole.Valid {
		t.Fatalf("reject must keep the current role, got %+v", row)
	}
}

func TestHandleSetRoleKeepsLastAdmin(t *testing.T) {
	f := setupMembersTest(t)

	rec := httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.admin.ID, &f.admin, `{"role":"MEMBER"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("demoting last admin: expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.member.ID, &f.admin, `{"role":"club_admin"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("promote status: %d body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.admin.ID, &f.admin, `{"role":"COACH"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("demote with another admin: %d body: %s", rec.Code, rec.Body.String())
	}
	if row := f.membership(t, f.admin.ID); row.Role != models.RoleCoach.String() {
		t.Fatalf("expected COACH, got %s", row.Role)
	}

	rec = httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.member.ID, &f.member, `{"role":"SUPER_ADMIN"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("super admin role: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.newbie.ID, &f.admin, `{"role":"MEMBER"}`))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demoted admin: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleSetRole(rec, f.request(http.MethodPut, f.newbie.ID, &f.member, `{"role":"MEMBER"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-member target: expected 404, got %d", rec.Code)
	}
}

func TestHandleRemoveAndLeave(t *testing.T) {
	f := setupMembersTest(t)

	rec := httptest.NewRecorder()
	HandleRemoveMember(rec, f.request(http.MethodDelete, f.admin.ID, &f.admin, ""))
	if rec.Code != http.StatusConflict {
		t.Fatalf("removing last admin: expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleLeaveClub(rec, f.request(http.MethodDelete, 0, &f.admin, ""))
	if rec.Code != http.StatusConflict {
		t.Fatalf("last admin leaving: expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleRemoveMember(rec, f.request(http.MethodDelete, f.member.ID, &f.member, ""))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member removing: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleRemoveMember(rec, f.request(http.MethodDelete, f.member.ID, &f.admin, ""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status: %d body: %s", rec.Code, rec.Body.String())
	}
	if f.hasMembership(f.member.ID) {
		t.Fatalf("removed member still has a membership")
	}

	rec = httptest.NewRecorder()
	HandleRemoveMember(rec, f.request(http.MethodDelete, f.member.ID, &f.admin, ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second remove: expected 404, got %d", rec.Code)
	}

	testutil.AddMember(t, f.db, f.newbie.ID, f.club.ID, models.RoleVisitor)
	rec = httptest.NewRecorder()
	HandleLeaveClub(rec, f.request(http.MethodDelete, 0, &f.newbie, ""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("leave status: %d body: %s", rec.Code, rec.Body.String())
	}
	if f.hasMembership(f.newbie.ID) {
		t.Fatalf("member who left still has a membership")
	}
}

func TestHandleListMembers(t *testing.T) {
	f := setupMembersTest(t)
	if _, err := f.db.Queries.UpsertUserClubRole(context.Background(), dbgen.UpsertUserClubRoleParams{
		UserID:        f.newbie.ID,
		ClubID:        f.club.ID,
		Role:          models.RoleVisitor.String(),
		Status:        models.MembershipPending,
		RequestedRole: testutil.NullString(models.RoleMember.String()),
	}); err != nil {
		t.Fatalf("add pending member: %v", err)
	}

	type listResponse struct {
		Members  []memberResponse `json:"members"`
		Total    int64            `json:"total"`
		Page     int64            `json:"page"`
		PageSize int64            `json:"page_size"`
	}
	list := func(t *testing.T, query string) listResponse {
		t.Helper()
		req := f.request(http.MethodGet, 0, &f.admin, "")
		req.URL.RawQuery = query
		rec := httptest.NewRecorder()
		HandleListMembers(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("list %q: status %d body: %s", query, rec.Code, rec.Body.String())
		}
		var resp listResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	all := list(t, "")
	if all.Total != 3 || len(all.Members) != 3 || all.Members[0].Email != "admin@test.com" {
		t.Fatalf("unexpected members %+v", all)
	}

	pending := list(t, "status=pending")
	if pending.Total != 1 || pending.Members[0].UserID != f.newbie.ID || pending.Members[0].RequestedRole != "MEMBER" {
		t.Fatalf("unexpected pending members %+v", pending)
	}

	search := list(t, "q=memb")
	if search.Total != 1 || search.Members[0].UserID != f.member.ID {
		t.Fatalf("unexpected search result %+v", search)
	}

	paged := list(t, "page=2&page_size=2")
	if paged.Total != 3 || len(paged.Members) != 1 || paged.Page != 2 || paged.PageSize != 2 {
		t.Fatalf("unexpected page %+v", paged)
	}

	req := f.request(http.MethodGet, 0, &f.admin, "")
	req.URL.RawQuery = "status=banned"
	rec := httptest.NewRecorder()
	HandleListMembers(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleListMembers(rec, f.request(http.MethodGet, 0, &f.member, ""))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member listing: expected 403, got %d", rec.Code)
	}
}

func TestHandleMembersPage(t *testing.T) {
	f := setupMembersTest(t)
	if _, err := f.db.Queries.UpsertUserClubRole(context.Background(), dbgen.UpsertUserClubRoleParams{
		UserID:        f.newbie.ID,
		ClubID:        f.club.ID,
		Role:          models.RoleVisitor.String(),
		Status:        models.MembershipPending,
		RequestedRole: testutil.NullString(models.RoleCoach.String()),
	}); err != nil {
		t.Fatalf("add pending member: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/clubs/riverside/admin/members", nil)
	req.SetPathValue("slug", "riverside")
	req = testutil.WithUser(req, f.admin)
	rec := httptest.NewRecorder()
	HandleMembersPage(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	approveURL := fmt.Sprintf(`hx-post="/api/v1/clubs/%d/members/%d/approve"`, f.club.ID, f.newbie.ID)
	for _, want := range []string{"<!doctype html>", "Members", "member@test.com", "Requested Coach", approveURL} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/clubs/riverside/admin/members?q=newbie", nil)
	req.SetPathValue("slug", "riverside")
	req.Header.Set("HX-Request", "true")
	req = testutil.WithUser(req, f.admin)
	rec = httptest.NewRecorder()
	HandleMembersPage(rec, req)
	fragment := rec.Body.String()
	if rec.Code != http.StatusOK || strings.Contains(fragment, "<!doctype html>") {
		t.Fatalf("expected list fragment, got %d %s", rec.Code, fragment)
	}
	if strings.Contains(fragment, "member@test.com") || !strings.Contains(fragment, "newbie@test.com") {
		t.Fatalf("search not applied: %s", fragment)
	}
}

func TestHandleListMyClubs(t *testing.T) {
	f := setupMembersTest(t)
	other := testutil.CreateClub(t, f.db, "hilltop")
	testutil.AddMember(t, f.db, f.member.ID, other.ID, models.RoleCoach)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/clubs", nil)
	req = testutil.WithUser(req, f.member)
	rec := httptest.NewRecorder()
	HandleListMyClubs(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}

	var resp struct {
		Clubs []myClubResponse `json:"clubs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Clubs) != 2 || resp.Clubs[0].Slug != "hilltop" || resp.Clubs[0].Role != "COACH" || resp.Clubs[1].Slug != "riverside" {
		t.Fatalf("unexpected clubs %+v", resp.Clubs)
	}
}
