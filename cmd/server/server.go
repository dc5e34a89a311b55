// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api"
	"github.com/codr1/Courtside/internal/api/auth"
	"github.com/codr1/Courtside/internal/api/bookings"
	"github.com/codr1/Courtside/internal/api/bookingwindows"
	"github.com/codr1/Courtside/internal/api/clubs"
	"github.com/codr1/Courtside/internal/api/courts"
	"github.com/codr1/Courtside/internal/api/matches"
	"github.com/codr1/Courtside/internal/api/members"
	"github.com/codr1/Courtside/internal/api/openinghours"
	"github.com/codr1/Courtside/internal/api/schedulerules"
	"github.com/codr1/Courtside/internal/api/themes"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/email"
	"github.com/codr1/Courtside/internal/ratelimit"
)

func initHandlers(cfg *config.Config, database *db.DB, emailClient email.EmailSender, limiter *ratelimit.Limiter, otp auth.OTPProvider) {
	auth.InitHandlers(database.Queries, cfg, limiter, otp)
	bookings.InitHandlers(database, emailClient)
	bookingwindows.InitHandlers(database)
	clubs.InitHandlers(database)
	courts.InitHandlers(database.Queries)
	matches.InitHandlers(database)
	members.InitHandlers(database)
	openinghours.InitHandlers(database)
	schedulerules.InitHandlers(database)
	themes.InitHandlers(database.Queries)
}

func newServer(cfg *config.Config, database *db.DB) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithClub(database.Queries, cfg.App.BaseDomain),
		auth.WithClerkSession,
		api.WithContentType,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	registerRoutes(router, cfg.App.StaticDir)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, staticDir string) {
	// Pages
	mux.HandleFunc("GET /{$}", clubs.HandleHome)
	mux.HandleFunc("GET /clubs/{slug}", clubs.HandleClubPage)
	mux.HandleFunc("GET /clubs/{slug}/admin/members", members.HandleMembersPage)
	mux.HandleFunc("GET /clubs/{slug}/admin/branding", themes.HandleBrandingPage)
	mux.HandleFunc("GET /clubs/{slug}/admin/hours", openinghours.HandleHoursPage)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/register", auth.HandleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", auth.HandleMe)
	mux.HandleFunc("PUT /api/v1/auth/me", auth.HandleUpdateProfile)
	mux.HandleFunc("POST /api/v1/auth/send-code", auth.HandleSendCode)
	mux.HandleFunc("POST /api/v1/auth/verify-code", auth.HandleVerifyCode)
	mux.HandleFunc("GET /auth/clerk/callback", auth.HandleClerkCallback)

	// Current user
	mux.HandleFunc("GET /api/v1/me/clubs", members.HandleListMyClubs)
	mux.HandleFunc("GET /api/v1/me/bookings", bookings.HandleListMyBookings)

	// Club routes
	mux.HandleFunc("POST /api/v1/clubs", clubs.HandleCreateClub)
	mux.HandleFunc("GET /api/v1/clubs", clubs.HandleListClubs)
	mux.HandleFunc("GET /api/v1/club-slugs/{slug}", clubs.HandleGetClubBySlug)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}", clubs.HandleGetClub)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/settings", clubs.HandleUpdateSettings)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/archive", clubs.HandleArchiveClub)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/availability", clubs.HandleAvailability)

	// Branding routes
	mux.HandleFunc("GET /api/v1/branding/presets", themes.HandleListPresets)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/branding", themes.HandleGetBranding)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/branding", themes.HandleUpdateBranding)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/branding/preset", themes.HandleApplyPreset)

	// Court routes
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/courts", courts.HandleListCourts)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/courts", courts.HandleCreateCourt)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/courts/{court_id}", courts.HandleUpdateCourt)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/courts/{court_id}/deactivate", courts.HandleDeactivateCourt)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/courts/{court_id}", courts.HandleDeleteCourt)

	// Opening hours and booking windows
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/opening-hours", openinghours.HandleGetOpeningHours)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/opening-hours/{day_of_week}", openinghours.HandleSetOpeningHours)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/booking-windows", bookingwindows.HandleGetBookingWindows)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/booking-windows", bookingwindows.HandleSaveBookingWindows)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/booking-windows/{role}", bookingwindows.HandleSetBookingWindow)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/booking-windows/{role}", bookingwindows.HandleDeleteBookingWindow)

	// Schedule rules
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/schedule-rules", schedulerules.HandleListRules)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/schedule-rules", schedulerules.HandleCreateRule)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/schedule-rules/{rule_id}", schedulerules.HandleUpdateRule)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/schedule-rules/{rule_id}", schedulerules.HandleDeleteRule)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/schedule-rules/{rule_id}/disabled-dates", schedulerules.HandleAddDisabledDate)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/schedule-rules/{rule_id}/disabled-dates/{date}", schedulerules.HandleRemoveDisabledDate)

	// Bookings
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/bookings", bookings.HandleCreateBooking)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/bookings", bookings.HandleListBookings)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/bookings/{booking_id}", bookings.HandleGetBooking)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/bookings/{booking_id}", bookings.HandleUpdateBooking)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/bookings/{booking_id}/cancel", bookings.HandleCancelBooking)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/bookings/{booking_id}", bookings.HandleCancelBooking)

	// Membership
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/members/join", members.HandleJoinClub)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/members/request", members.HandleRequestRole)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/members/me", members.HandleLeaveClub)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/members", members.HandleListMembers)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/members/{user_id}/approve", members.HandleApproveRequest)
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/members/{user_id}/reject", members.HandleRejectRequest)
	mux.HandleFunc("PUT /api/v1/clubs/{club_id}/members/{user_id}/role", members.HandleSetRole)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/members/{user_id}", members.HandleRemoveMember)

	// Match results
	mux.HandleFunc("POST /api/v1/clubs/{club_id}/matches", matches.HandleRecordMatch)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/matches", matches.HandleListMatches)
	mux.HandleFunc("DELETE /api/v1/clubs/{club_id}/matches/{match_id}", matches.HandleDeleteMatch)
	mux.HandleFunc("GET /api/v1/clubs/{club_id}/standings", matches.HandleStandings)

	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
