package email

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

var sendTimeout = 5 * time.Second

// BookingQueries is what LoadBookingDetails reads.
type BookingQueries interface {
	GetCourt(ctx context.Context, arg dbgen.GetCourtParams) (dbgen.Court, error)
	ListBookingPlayers(ctx context.Context, bookingID int64) ([]dbgen.ListBookingPlayersRow, error)
}

// LoadBookingDetails renders booking for emails in loc and returns the user
// ids that should receive them: every player plus the booker.
func LoadBookingDetails(ctx context.Context, q BookingQueries, clubName string, loc *time.Location, booking dbgen.Booking) (BookingDetails, []int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	court, err := q.GetCourt(ctx, dbgen.GetCourtParams{ID: booking.CourtID, ClubID: booking.ClubID})
	if err != nil {
		return BookingDetails{}, nil, fmt.Errorf("load court: %w", err)
	}
	players, err := q.ListBookingPlayers(ctx, booking.ID)
	if err != nil {
		return BookingDetails{}, nil, fmt.Errorf("load players: %w", err)
	}

	details := BookingDetails{
		ClubName: clubName,
		Court:    courtLabel(court),
		Start:    booking.StartTime.In(loc),
		End:      booking.EndTime.In(loc),
		Notes:    booking.Notes,
	}
	recipients := []int64{booking.BookedByUserID}
	for _, player := range players {
		details.Players = append(details.Players, strings.TrimSpace(player.FirstName+" "+player.LastName))
		if !slices.Contains(recipients, player.UserID) {
			recipients = append(recipients, player.UserID)
		}
	}
	return details, recipients, nil
}

// SendToUsers delivers message to each user on a background goroutine.
// Sends outlive ctx's cancellation but keep its values and are bounded by
// their own timeout. An empty sender uses the client's default address.
func SendToUsers(ctx context.Context, users UserLookup, client EmailSender, userIDs []int64, message Message, sender string, logger *zerolog.Logger) {
	if client == nil || users == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}

	for _, userID := range userIDs {
		if userID <= 0 {
			if logger != nil {
				logger.Warn().Int64("user_id", userID).Msg("Skipping email with invalid user ID")
			}
			continue
		}
		user, err := users.GetUserByID(ctx, userID)
		if err != nil {
			if logger != nil {
				logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for email")
			}
			continue
		}
		recipient := strings.TrimSpace(user.Email)
		if recipient == "" {
			continue
		}

		go func(userID int64, recipient string) {
			sendCtx, cancel := newEmailContext(ctx, sendTimeout)
			defer cancel()
			if err := client.SendFrom(sendCtx, recipient, message.Subject, message.Body, sender); err != nil {
				if logger != nil {
					logger.Error().Err(err).Int64("user_id", userID).Str("subject", message.Subject).Msg("Failed to send email")
				}
				return
			}
			if logger != nil {
				logger.Debug().Int64("user_id", userID).Str("subject", message.Subject).Msg("Email sent")
			}
		}(userID, recipient)
	}
}

// FromAddress is the club's configured sender, or empty for the default.
func FromAddress(club dbgen.Club) string {
	if !club.EmailFromAddress.Valid {
		return ""
	}
	return strings.TrimSpace(club.EmailFromAddress.String)
}

func courtLabel(court dbgen.Court) string {
	if name := strings.TrimSpace(court.Name); name != "" {
		return fmt.Sprintf("Court %d (%s)", court.CourtNumber, name)
	}
	return fmt.Sprintf("Court %d", court.CourtNumber)
}
