package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/email"
)

const (
	reminderJobName                  = "booking_reminders"
	defaultReminderHoursBefore int64 = 24
	defaultReminderJobWindow         = 15 * time.Minute
	reminderJobTimeout               = 2 * time.Minute
)

// RegisterReminderJobs registers the booking reminder job. Each run emails
// the players of bookings that start reminder_hours_before from now, within
// one cron interval, so every booking is reminded once.
func RegisterReminderJobs(database *db.DB, emailClient email.EmailSender, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}

	window := cronInterval(cronExpr)
	jobLogger := log.With().
		Str("component", "booking_reminders_job").
		Str("job_name", reminderJobName).
		Str("cron", cronExpr).
		Dur("window", window).
		Logger()

	_, err := AddJob(reminderJobName, cronExpr, func(ctx context.Context) error {
		if emailClient == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email client not configured")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, reminderJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		sent, err := SendDueReminders(ctx, database.Queries, emailClient, time.Now().UTC(), window)
		if err != nil {
			return fmt.Errorf("send reminders: %w", err)
		}
		if sent > 0 {
			jobLogger.Info().Int("bookings", sent).Msg("Booking reminders sent")
		}
		return nil
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking reminder job: %w", err)
	}

	jobLogger.Info().Msg("Booking reminder job registered")
	return nil
}

// SendDueReminders emails every booking in an active club whose start falls
// in [now+hours, now+hours+window) and returns how many bookings it
// reminded. A failure in one club is logged and does not stop the others.
func SendDueReminders(ctx context.Context, q *dbgen.Queries, emailClient email.EmailSender, now time.Time, window time.Duration) (int, error) {
	logger := log.Ctx(ctx)

	clubs, err := q.ListActiveClubs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list clubs: %w", err)
	}

	reminded := 0
	for _, club := range clubs {
		clubLogger := logger.With().Int64("club_id", club.ID).Logger()

		hours := club.ReminderHoursBefore
		if hours <= 0 {
			hours = defaultReminderHoursBefore
		}
		windowStart := now.Add(time.Duration(hours) * time.Hour)

		bookings, err := q.ListBookingsStartingBetween(ctx, dbgen.ListBookingsStartingBetweenParams{
			ClubID:    club.ID,
			StartTime: windowStart,
			EndTime:   windowStart.Add(window),
		})
		if err != nil {
			clubLogger.Error().Err(err).Msg("Failed to load bookings for reminder job")
			continue
		}
		if len(bookings) == 0 {
			continue
		}

		loc := time.UTC
		if club.Timezone != "" {
			loaded, loadErr := time.LoadLocation(club.Timezone)
			if loadErr != nil {
				clubLogger.Error().Err(loadErr).Str("timezone", club.Timezone).Msg("Failed to load club timezone for reminders")
			} else {
				loc = loaded
			}
		}

		for _, booking := range bookings {
			if err := sendBookingReminder(ctx, q, emailClient, club, booking, loc, &clubLogger); err != nil {
				clubLogger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to send reminder emails")
				continue
			}
			reminded++
		}
	}
	return reminded, nil
}

func sendBookingReminder(ctx context.Context, q *dbgen.Queries, emailClient email.EmailSender, club dbgen.Club, booking dbgen.Booking, loc *time.Location, logger *zerolog.Logger) error {
	details, recipients, err := email.LoadBookingDetails(ctx, q, club.Name, loc, booking)
	if err != nil {
		return err
	}
	email.SendToUsers(ctx, q, emailClient, recipients, email.BuildReminderEmail(details), email.FromAddress(club), logger)
	return nil
}

// cronInterval is the gap between two consecutive runs of expr, falling
// back to 15 minutes when expr does not parse.
func cronInterval(expr string) time.Duration {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return defaultReminderJobWindow
	}
	first := schedule.Next(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	interval := schedule.Next(first).Sub(first)
	if interval <= 0 {
		return defaultReminderJobWindow
	}
	return interval
}
