package email

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	"github.com/codr1/Courtside/internal/testutil"
)

type sentEmail struct {
	recipient string
	subject   string
	sender    string
	err       error
}

// fakeEmailSender blocks each send until release is closed or the send
// context ends, then reports the outcome on sent.
type fakeEmailSender struct {
	release chan struct{}
	started chan struct{}
	sent    chan sentEmail
}

func newFakeEmailSender(buffer int) *fakeEmailSender {
	return &fakeEmailSender{
		release: make(chan struct{}),
		started: make(chan struct{}, buffer),
		sent:    make(chan sentEmail, buffer),
	}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	return f.SendFrom(ctx, recipient, subject, body, "")
}

func (f *fakeEmailSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	f.started <- struct{}{}
	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-f.release:
	}
	f.sent <- sentEmail{recipient: recipient, subject: subject, sender: sender, err: err}
	return err
}

func waitForSent(t *testing.T, f *fakeEmailSender, n int) []sentEmail {
	t.Helper()

	var out []sentEmail
	for range n {
		select {
		case email := <-f.sent:
			out = append(out, email)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d emails, got %d", n, len(out))
		}
	}
	return out
}

func TestSendToUsers_DeliversToEachUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	alice := testutil.CreateUser(t, database, "alice@test.com")
	bob := testutil.CreateUser(t, database, "bob@test.com")
	sender := newFakeEmailSender(4)
	close(sender.release)

	SendToUsers(context.Background(), database.Queries, sender, []int64{alice.ID, 0, 9999, bob.ID}, Message{
		Subject: "Subject",
		Body:    "Body",
	}, "club@test.com", nil)

	sent := waitForSent(t, sender, 2)
	var recipients []string
	for _, email := range sent {
		if email.err != nil {
			t.Fatalf("unexpected send error: %v", email.err)
		}
		if email.sender != "club@test.com" {
			t.Fatalf("sender: %q", email.sender)
		}
		recipients = append(recipients, email.recipient)
	}
	slices.Sort(recipients)
	if !slices.Equal(recipients, []string{"alice@test.com", "bob@test.com"}) {
		t.Fatalf("recipients: %v", recipients)
	}
}

func TestSendToUsers_OutlivesRequestCancellation(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "member@test.com")
	sender := newFakeEmailSender(1)

	ctx, cancel := context.WithCancel(context.Background())
	SendToUsers(ctx, database.Queries, sender, []int64{user.ID}, Message{Subject: "Subject", Body: "Body"}, "", nil)

	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatal("expected send to start")
	}
	cancel()
	close(sender.release)

	sent := waitForSent(t, sender, 1)
	if sent[0].err != nil {
		t.Fatalf("request cancellation must not abort the send, got %v", sent[0].err)
	}
}

func TestSendToUsers_TimesOut(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "member@test.com")
	sender := newFakeEmailSender(1)

	previous := sendTimeout
	sendTimeout = 20 * time.Millisecond
	t.Cleanup(func() { sendTimeout = previous })

	SendToUsers(context.Background(), database.Queries, sender, []int64{user.ID}, Message{Subject: "Subject", Body: "Body"}, "", nil)

	sent := waitForSent(t, sender, 1)
	if !errors.Is(sent[0].err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", sent[0].err)
	}
}

func TestSendToUsers_SkipsEmptyMessage(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "member@test.com")
	sender := newFakeEmailSender(1)
	close(sender.release)

	SendToUsers(context.Background(), database.Queries, sender, []int64{user.ID}, Message{Subject: "Subject"}, "", nil)

	select {
	case <-sender.started:
		t.Fatal("empty message must not be sent")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoadBookingDetails(t *testing.T) {
	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	court := testutil.CreateCourt(t, database, club.ID, 3)
	booker := testutil.CreateUser(t, database, "booker@test.com")
	partner := testutil.CreateUser(t, database, "partner@test.com")
	testutil.AddMember(t, database, booker.ID, club.ID, models.RoleMember)

	ctx := context.Background()
	start := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	booking, err := database.Queries.CreateBooking(ctx, dbgen.CreateBookingParams{
		ClubID:         club.ID,
		CourtID:        court.ID,
		BookedByUserID: booker.ID,
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
		Notes:          "Bring balls",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	for _, userID := range []int64{booker.ID, partner.ID} {
		if err := database.Queries.AddBookingPlayer(ctx, dbgen.AddBookingPlayerParams{BookingID: booking.ID, UserID: userID}); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	details, recipients, err := LoadBookingDetails(ctx, database.Queries, club.Name, loc, booking)
	if err != nil {
		t.Fatalf("load details: %v", err)
	}
	if details.Court != "Court 3" || details.Start.Hour() != 13 {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.Players) != 2 {
		t.Fatalf("players: %v", details.Players)
	}
	if !slices.Equal(recipients, []int64{booker.ID, partner.ID}) {
		t.Fatalf("recipients: %v", recipients)
	}

	message := BuildConfirmationEmail(details)
	if message.Subject != "Court Booking Confirmed - Riverside Club" {
		t.Fatalf("subject: %q", message.Subject)
	}
	for _, want := range []string{"Court: Court 3", "Date: Tuesday, Jun 3, 2025", "Time: 1:00 PM - 2:00 PM EDT", "Notes: Bring balls"} {
		if !strings.Contains(message.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, message.Body)
		}
	}
}

func TestBuildCancellationAndReminderEmails(t *testing.T) {
	details := BookingDetails{Court: "Court 1"}

	cancelled := BuildCancellationEmail(details, "  Rain  ")
	if cancelled.Subject != "Court Booking Cancelled - your club" {
		t.Fatalf("subject: %q", cancelled.Subject)
	}
	if !strings.Contains(cancelled.Body, "Reason: Rain") || !strings.Contains(cancelled.Body, "Date: TBD") {
		t.Fatalf("body:\n%s", cancelled.Body)
	}
	if strings.Contains(BuildCancellationEmail(details, "").Body, "Reason:") {
		t.Fatal("empty reason must be omitted")
	}

	reminder := BuildReminderEmail(BookingDetails{ClubName: "Hilltop", Players: []string{"Ann Lee", "Bo Kim"}})
	if reminder.Subject != "Upcoming Court Booking - Hilltop" {
		t.Fatalf("subject: %q", reminder.Subject)
	}
	if !strings.Contains(reminder.Body, "Players: Ann Lee, Bo Kim") || !strings.Contains(reminder.Body, "Court: TBD") {
		t.Fatalf("body:\n%s", reminder.Body)
	}
}

func TestFromAddress(t *testing.T) {
	if got := FromAddress(dbgen.Club{}); got != "" {
		t.Fatalf("expected empty sender, got %q", got)
	}
	if got := FromAddress(dbgen.Club{EmailFromAddress: testutil.NullString(" club@test.com ")}); got != "club@test.com" {
		t.Fatalf("sender: %q", got)
	}
}
