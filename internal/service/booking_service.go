package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

// BookingService manages reservations against meetings. Bookings never
// touch the scheduling provider; the store's (owner, meeting) uniqueness
// constraint is what serializes racing creates.
type BookingService struct {
	store    store.Store
	notifier Notifier
}

func NewBookingService(st store.Store, notifier Notifier) *BookingService {
	return &BookingService{store: st, notifier: notifier}
}

// ListBookings returns the user's own bookings. An unauthenticated caller
// gets an empty list, not an error.
func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	if userID == "" {
		return []model.Booking{}, nil
	}
	return s.store.ListBookingsByOwner(ctx, userID)
}

// CreateBooking reserves a slot on any existing meeting, including other
// users' meetings. A second booking for the same (user, meeting) pair is a
// validation error whether it's caught here or raced into the constraint.
func (s *BookingService) CreateBooking(ctx context.Context, userID, meetingID string) (*model.Booking, error) {
	if userID == "" {
		return nil, &ValidationError{Msg: "user required"}
	}

	m, err := s.store.MeetingByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b := &model.Booking{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		MeetingID: m.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ValidationError{Msg: "already booked"}
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.notifyUser(ctx, userID, m, s.notifier.BookingConfirmed)
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, userID, id string) (*model.Booking, error) {
	b, err := s.store.BookingOwnedBy(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateBooking re-points an existing booking at a different meeting. The
// same ownership and uniqueness rules as CreateBooking apply; no provider
// call and no notification are made.
func (s *BookingService) UpdateBooking(ctx context.Context, userID, id, newMeetingID string) (*model.Booking, error) {
	b, err := s.store.BookingOwnedBy(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m, err := s.store.MeetingByID(ctx, newMeetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.store.UpdateBookingMeeting(ctx, b.ID, userID, m.ID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ValidationError{Msg: "already booked"}
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.MeetingID = m.ID
	return b, nil
}

// DeleteBooking cancels the user's own booking. The cancellation notice is
// sent before the row goes away so the meeting is still loadable for the
// template; the send itself is best-effort.
func (s *BookingService) DeleteBooking(ctx context.Context, userID, id string) error {
	b, err := s.store.BookingOwnedBy(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if m, err := s.store.MeetingByID(ctx, b.MeetingID); err == nil {
		s.notifyUser(ctx, userID, m, s.notifier.BookingCancelled)
	}

	if err := s.store.DeleteBooking(ctx, b.ID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *BookingService) notifyUser(ctx context.Context, userID string, m *model.Meeting, send func(string, *model.Meeting) error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		log.Printf("notify: lookup user %s: %v", userID, err)
		return
	}
	if err := send(u.Email, m); err != nil {
		log.Printf("notify %s about %q: %v", u.Email, m.Topic, err)
	}
}
