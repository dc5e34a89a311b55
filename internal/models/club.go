package models

// Club statuses stored in clubs.status.
const (
	ClubStatusActive   = "active"
	ClubStatusArchived = "archived"
)

// Booking statuses stored in bookings.status.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// MaxBookingPlayers includes the booker.
const MaxBookingPlayers = 4
