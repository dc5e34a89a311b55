package matches

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
	matchstats "github.com/codr1/Courtside/internal/matches"
	"github.com/codr1/Courtside/internal/models"
	"github.com/codr1/Courtside/internal/testutil"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

type matchesFixture struct {
	db       *db.DB
	club     dbgen.Club
	admin    dbgen.User
	alice    dbgen.User
	bob      dbgen.User
	carol    dbgen.User
	dave     dbgen.User
	outsider dbgen.User
}

func setupMatchesTest(t *testing.T) matchesFixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	f := matchesFixture{
		db:       database,
		club:     club,
		admin:    testutil.CreateUser(t, database, "admin@test.com"),
		alice:    testutil.CreateUser(t, database, "alice@test.com"),
		bob:      testutil.CreateUser(t, database, "bob@test.com"),
		carol:    testutil.CreateUser(t, database, "carol@test.com"),
		dave:     testutil.CreateUser(t, database, "dave@test.com"),
		outsider: testutil.CreateUser(t, database, "outsider@test.com"),
	}
	testutil.AddMember(t, database, f.admin.ID, club.ID, models.RoleClubAdmin)
	for _, user := range []dbgen.User{f.alice, f.bob, f.carol, f.dave} {
		testutil.AddMember(t, database, user.ID, club.ID, models.RoleMember)
	}

	queries = nil
	store = nil
	queriesOnce = sync.Once{}
	InitHandlers(database)
	now = func() time.Time { return testNow }

	t.Cleanup(func() {
		queries = nil
		store = nil
		queriesOnce = sync.Once{}
		now = time.Now
	})

	return f
}

func (f matchesFixture) request(method string, matchID int64, user *dbgen.User, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/clubs/x/matches", strings.NewReader(body))
	req.SetPathValue("club_id", fmt.Sprint(f.club.ID))
	if matchID != 0 {
		req.SetPathValue("match_id", fmt.Sprint(matchID))
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	return req
}

func (f matchesFixture) record(t *testing.T, user dbgen.User, body string) matchResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	HandleRecordMatch(rec, f.request(http.MethodPost, 0, &user, body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("record match: status %d body: %s", rec.Code, rec.Body.String())
	}
	var resp matchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandleRecordMatch(t *testing.T) {
	f := setupMatchesTest(t)

	body := fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7, 8-11, 11-9","played_at":"2025-06-01T18:00"}`, f.alice.ID, f.bob.ID)
	resp := f.record(t, f.alice, body)

	if resp.Score != "11-7,8-11,11-9" {
		t.Fatalf("expected normalized score, got %q", resp.Score)
	}
	if resp.WinningTeam != 1 {
		t.Fatalf("expected team 1 to win, got %d", resp.WinningTeam)
	}
	if len(resp.Sets) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(resp.Sets))
	}
	if resp.RecordedBy != f.alice.ID {
		t.Fatalf("expected recorder %d, got %d", f.alice.ID, resp.RecordedBy)
	}
	if !resp.PlayedAt.Equal(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected played_at %s", resp.PlayedAt)
	}
	if len(resp.Team1) != 1 || resp.Team1[0].UserID != f.alice.ID || resp.Team1[0].Name != "Alice Player" {
		t.Fatalf("unexpected team1 %+v", resp.Team1)
	}
	if len(resp.Team2) != 1 || resp.Team2[0].UserID != f.bob.ID {
		t.Fatalf("unexpected team2 %+v", resp.Team2)
	}
	if resp.BookingID != nil {
		t.Fatalf("expected no booking link, got %d", *resp.BookingID)
	}

	// Admins may record matches they did not play in.
	body = fmt.Sprintf(`{"team1":[%d,%d],"team2":[%d,%d],"score":"5-11,9-11"}`, f.alice.ID, f.bob.ID, f.carol.ID, f.dave.ID)
	resp = f.record(t, f.admin, body)
	if resp.WinningTeam != 2 {
		t.Fatalf("expected team 2 to win, got %d", resp.WinningTeam)
	}
	if !resp.PlayedAt.Equal(testNow) {
		t.Fatalf("expected played_at to default to now, got %s", resp.PlayedAt)
	}
	if len(resp.Team1) != 2 || len(resp.Team2) != 2 {
		t.Fatalf("expected doubles teams, got %+v / %+v", resp.Team1, resp.Team2)
	}
}

func TestHandleRecordMatchRejected(t *testing.T) {
	f := setupMatchesTest(t)

	singles := func(score string) string {
		return fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":%q}`, f.alice.ID, f.bob.ID, score)
	}

	tests := []struct {
		name   string
		user   *dbgen.User
		body   string
		status int
	}{
		{name: "anonymous", user: nil, body: singles("11-7"), status: http.StatusUnauthorized},
		{name: "unknown field", user: &f.alice, body: `{"teams":[1]}`, status: http.StatusBadRequest},
		{name: "tied set", user: &f.alice, body: singles("11-7,10-10"), status: http.StatusBadRequest},
		{name: "no winner", user: &f.alice, body: singles("11-7,7-11"), status: http.StatusBadRequest},
		{name: "too many sets", user: &f.alice, body: singles("11-1,1-11,11-1,1-11,11-1,11-1"), status: http.StatusBadRequest},
		{name: "set after match decided", user: &f.alice, body: singles("11-0,11-0,11-0,0-11"), status: http.StatusBadRequest},
		{name: "bad set format", user: &f.alice, body: singles("eleven-seven"), status: http.StatusBadRequest},
		{name: "empty score", user: &f.alice, body: singles(""), status: http.StatusBadRequest},
		{
			name:   "uneven teams",
			user:   &f.alice,
			body:   fmt.Sprintf(`{"team1":[%d,%d],"team2":[%d],"score":"11-7"}`, f.alice.ID, f.carol.ID, f.bob.ID),
			status: http.StatusBadRequest,
		},
		{
			name:   "duplicate player",
			user:   &f.alice,
			body:   fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7"}`, f.alice.ID, f.alice.ID),
			status: http.StatusBadRequest,
		},
		{
			name:   "future match",
			user:   &f.alice,
			body:   fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7","played_at":"2025-06-03T09:00"}`, f.alice.ID, f.bob.ID),
			status: http.StatusBadRequest,
		},
		{name: "caller did not play", user: &f.carol, body: singles("11-7"), status: http.StatusForbidden},
		{
			name:   "player outside club",
			user:   &f.alice,
			body:   fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7"}`, f.alice.ID, f.outsider.ID),
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown booking",
			user:   &f.alice,
			body:   fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7","booking_id":9999}`, f.alice.ID, f.bob.ID),
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleRecordMatch(rec, f.request(http.MethodPost, 0, tt.user, tt.body))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	results, err := f.db.Queries.ListAllMatchResults(context.Background(), f.club.ID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no stored results, got %d", len(results))
	}
}

func TestHandleRecordMatchBookingLink(t *testing.T) {
	f := setupMatchesTest(t)
	ctx := context.Background()

	court := testutil.CreateCourt(t, f.db, f.club.ID, 1)
	booking, err := f.db.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
		ClubID:         f.club.ID,
		CourtID:        court.ID,
		BookedByUserID: f.alice.ID,
		StartTime:      time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	other := testutil.CreateClub(t, f.db, "hilltop")
	otherCourt := testutil.CreateCourt(t, f.db, other.ID, 1)
	foreign, err := f.db.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
		ClubID:         other.ID,
		CourtID:        otherCourt.ID,
		BookedByUserID: f.alice.ID,
		StartTime:      time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create foreign booking: %v", err)
	}

	rec := httptest.NewRecorder()
	body := fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7","booking_id":%d}`, f.alice.ID, f.bob.ID, foreign.ID)
	HandleRecordMatch(rec, f.request(http.MethodPost, 0, &f.alice, body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign booking: expected 400, got %d", rec.Code)
	}

	body = fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7","booking_id":%d}`, f.alice.ID, f.bob.ID, booking.ID)
	resp := f.record(t, f.bob, body)
	if resp.BookingID == nil || *resp.BookingID != booking.ID {
		t.Fatalf("expected booking link %d, got %v", booking.ID, resp.BookingID)
	}
}

func TestHandleListMatches(t *testing.T) {
	f := setupMatchesTest(t)

	for i, playedAt := range []string{"2025-05-30T10:00", "2025-06-01T10:00", "2025-05-31T10:00"} {
		body := fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-%d","played_at":%q}`, f.alice.ID, f.bob.ID, i+1, playedAt)
		f.record(t, f.alice, body)
	}

	rec := httptest.NewRecorder()
	req := f.request(http.MethodGet, 0, nil, "")
	req.URL.RawQuery = "page=1&page_size=2"
	HandleListMatches(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Matches  []matchResponse `json:"matches"`
		Page     int64           `json:"page"`
		PageSize int64           `json:"page_size"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Matches) != 2 || resp.PageSize != 2 {
		t.Fatalf("expected 2 matches on the page, got %d (size %d)", len(resp.Matches), resp.PageSize)
	}
	if resp.Matches[0].Score != "11-2" || resp.Matches[1].Score != "11-3" {
		t.Fatalf("expected newest first, got %s then %s", resp.Matches[0].Score, resp.Matches[1].Score)
	}
	for _, match := range resp.Matches {
		if len(match.Team1) != 1 || len(match.Team2) != 1 {
			t.Fatalf("expected players on match %d, got %+v / %+v", match.ID, match.Team1, match.Team2)
		}
	}

	rec = httptest.NewRecorder()
	req = f.request(http.MethodGet, 0, nil, "")
	req.SetPathValue("club_id", "9999")
	HandleListMatches(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown club: expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteMatch(t *testing.T) {
	f := setupMatchesTest(t)

	body := fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7"}`, f.alice.ID, f.bob.ID)
	first := f.record(t, f.alice, body)
	second := f.record(t, f.alice, body)

	tests := []struct {
		name    string
		matchID int64
		user    *dbgen.User
		status  int
	}{
		{name: "anonymous", matchID: first.ID, user: nil, status: http.StatusUnauthorized},
		{name: "other player", matchID: first.ID, user: &f.bob, status: http.StatusForbidden},
		{name: "recorder", matchID: first.ID, user: &f.alice, status: http.StatusNoContent},
		{name: "already deleted", matchID: first.ID, user: &f.alice, status: http.StatusNotFound},
		{name: "admin", matchID: second.ID, user: &f.admin, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleDeleteMatch(rec, f.request(http.MethodDelete, tt.matchID, tt.user, ""))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	players, err := f.db.Queries.ListMatchResultPlayers(context.Background(), f.club.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("expected players to be removed with their matches, got %d", len(players))
	}
}

func TestHandleStandings(t *testing.T) {
	f := setupMatchesTest(t)

	f.record(t, f.alice, fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-7,11-5"}`, f.alice.ID, f.bob.ID))
	f.record(t, f.alice, fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-9"}`, f.alice.ID, f.carol.ID))
	f.record(t, f.bob, fmt.Sprintf(`{"team1":[%d],"team2":[%d],"score":"11-3"}`, f.bob.ID, f.carol.ID))

	rec := httptest.NewRecorder()
	HandleStandings(rec, f.request(http.MethodGet, 0, nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Standings []matchstats.PlayerStanding `json:"standings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Standings) != 3 {
		t.Fatalf("expected 3 players, got %d", len(resp.Standings))
	}

	want := []struct {
		userID int64
		wins   int
		losses int
	}{
		{f.alice.ID, 2, 0},
		{f.bob.ID, 1, 1},
		{f.carol.ID, 0, 2},
	}
	for i, w := range want {
		got := resp.Standings[i]
		if got.UserID != w.userID || got.Wins != w.wins || got.Losses != w.losses {
			t.Fatalf("rank %d: expected user %d %d-%d, got %+v", i+1, w.userID, w.wins, w.losses, got)
		}
	}
	if alice := resp.Standings[0]; alice.SetsFor != 3 || alice.SetsAgainst != 0 || alice.PointsFor != 33 || alice.PointsAgainst != 21 {
		t.Fatalf("unexpected totals for alice %+v", alice)
	}
}
