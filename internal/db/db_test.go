package db

import (
	"context"
	"errors"
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

func TestEnsureForeignKeysEnabledDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "file.db", want: "file.db?_fk=1"},
		{in: "file.db?cache=shared", want: "file.db?cache=shared&_fk=1"},
		{in: "file.db?_fk=0", want: "file.db?_fk=0"},
	}
	for _, test := range tests {
		if got := ensureForeignKeysEnabledDSN(test.in); got != test.want {
			t.Fatalf("ensureForeignKeysEnabledDSN(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	sentinel := errors.New("boom")
	err = database.RunInTx(ctx, func(txdb *DB) error {
		if _, err := txdb.Queries.CreateClub(ctx, dbgen.CreateClubParams{
			Name:     "Rollback Club",
			Slug:     "rollback",
			Timezone: "UTC",
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx() error = %v, want %v", err, sentinel)
	}

	clubs, err := database.Queries.ListActiveClubs(ctx)
	if err != nil {
		t.Fatalf("ListActiveClubs() error = %v", err)
	}
	if len(clubs) != 0 {
		t.Fatalf("expected rollback to discard club, found %d", len(clubs))
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	_, err = database.ExecContext(context.Background(),
		"INSERT INTO courts (club_id, name, court_number) VALUES (999, 'Ghost', 1)")
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown club")
	}
}

func TestGeneratedQueriesBuildOnEveryPlatform(t *testing.T) {
	entries, err := os.ReadDir("generated")
	if err != nil {
		t.Fatalf("read generated dir: %v", err)
	}

	for _, goos := range []string{"linux", "darwin", "windows"} {
		ctxt := build.Default
		ctxt.GOOS = goos
		ctxt.GOARCH = "amd64"
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
				continue
			}
			ok, err := ctxt.MatchFile("generated", name)
			if err != nil {
				t.Fatalf("match %s: %v", name, err)
			}
			if !ok {
				t.Fatalf("%s is excluded from the %s build", name, goos)
			}
		}
	}
}

func TestBookingWindowQueries(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "windows.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	club, err := database.Queries.CreateClub(ctx, dbgen.CreateClubParams{Name: "Window Club", Slug: "window", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("CreateClub() error = %v", err)
	}

	for _, days := range []int64{5, 9} {
		if _, err := database.Queries.UpsertBookingWindow(ctx, dbgen.UpsertBookingWindowParams{
			ClubID: club.ID, Role: "MEMBER", MaxAdvanceDays: days,
		}); err != nil {
			t.Fatalf("UpsertBookingWindow() error = %v", err)
		}
	}
	windows, err := database.Queries.ListBookingWindows(ctx, club.ID)
	if err != nil {
		t.Fatalf("ListBookingWindows() error = %v", err)
	}
	if len(windows) != 1 || windows[0].MaxAdvanceDays != 9 {
		t.Fatalf("expected one MEMBER window of 9 days, got %+v", windows)
	}

	deleted, err := database.Queries.DeleteBookingWindow(ctx, dbgen.DeleteBookingWindowParams{ClubID: club.ID, Role: "MEMBER"})
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteBookingWindow() = %d, %v", deleted, err)
	}
}
