// Package store defines the persistence interface for users, meetings and
// bookings. The postgres subpackage is the production backend; the memory
// subpackage backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"booking-api/internal/model"
)

var (
	// ErrNotFound is returned when no row matches, including rows hidden
	// by ownership scoping.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert or update violates a
	// uniqueness constraint (duplicate email, duplicate booking).
	ErrDuplicate = errors.New("duplicate")
)

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}

// Store is the full persistence contract. Methods named *OwnedBy scope the
// lookup to rows owned by the given user and return ErrNotFound otherwise,
// so callers never learn whether a foreign row exists.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)

	CreateMeeting(ctx context.Context, m *model.Meeting) error
	MeetingByID(ctx context.Context, id string) (*model.Meeting, error)
	MeetingOwnedBy(ctx context.Context, id, ownerID string) (*model.Meeting, error)
	ListMeetingsByOwner(ctx context.Context, ownerID string) ([]model.Meeting, error)
	// ListAvailableMeetings returns meetings starting at or after now,
	// excluding any the given user has booked. An empty userID excludes
	// nothing. Ordered by start time ascending.
	ListAvailableMeetings(ctx context.Context, userID string, now time.Time) ([]model.Meeting, error)
	// DeleteMeeting removes the meeting and, by cascade, its bookings.
	DeleteMeeting(ctx context.Context, id string) error

	// CreateBooking returns ErrDuplicate if the owner already holds a
	// booking for the meeting; the check is atomic at insert time.
	CreateBooking(ctx context.Context, b *model.Booking) error
	BookingOwnedBy(ctx context.Context, id, ownerID string) (*model.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]model.Booking, error)
	// ListBookingsByMeeting returns all bookings against the meeting,
	// ordered by creation time then id for deterministic fan-out.
	ListBookingsByMeeting(ctx context.Context, meetingID string) ([]model.Booking, error)
	// UpdateBookingMeeting re-points an owned booking at a different
	// meeting. ErrNotFound if the booking isn't owned by ownerID,
	// ErrDuplicate if the owner already booked the target meeting.
	UpdateBookingMeeting(ctx context.Context, id, ownerID, meetingID string) error
	DeleteBooking(ctx context.Context, id, ownerID string) error

	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	RefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeRefreshTokens(ctx context.Context, userID string) error
}
