// Package service implements the meeting and booking lifecycles: the rules
// that keep a meeting's bookings consistent and the coordination of the
// external scheduling provider with the store and the mail notifier.
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

// Provider is the slice of the scheduling provider the lifecycle managers
// need. zoom.Client satisfies it; tests substitute a fake.
type Provider interface {
	CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int) (string, error)
	DeleteMeeting(ctx context.Context, remoteID string) error
}

// Notifier is the outbound mail boundary. mail.Notifier satisfies it.
type Notifier interface {
	BookingConfirmed(to string, m *model.Meeting) error
	BookingCancelled(to string, m *model.Meeting) error
	MeetingCreated(to string, m *model.Meeting) error
	MeetingDeleted(to string, m *model.Meeting) error
}

// MeetingService manages the meeting lifecycle. The side-effect ordering
// is fixed: provider call, then persistence, then notification. A provider
// failure leaves no local state behind; a notification failure is logged
// and the state mutation stands.
type MeetingService struct {
	store    store.Store
	provider Provider
	notifier Notifier
}

func NewMeetingService(st store.Store, provider Provider, notifier Notifier) *MeetingService {
	return &MeetingService{store: st, provider: provider, notifier: notifier}
}

func (s *MeetingService) CreateMeeting(ctx context.Context, ownerID, topic string, start, end time.Time) (*model.Meeting, error) {
	if ownerID == "" {
		return nil, &ValidationError{Msg: "owner required"}
	}
	if topic == "" {
		return nil, &ValidationError{Msg: "topic required"}
	}
	if start.IsZero() || end.IsZero() {
		return nil, &ValidationError{Msg: "start and end times required"}
	}
	if !end.After(start) {
		return nil, &ValidationError{Msg: "end must be after start"}
	}

	duration := int(end.Sub(start).Minutes())
	remoteID, err := s.provider.CreateMeeting(ctx, topic, start, duration)
	if err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: err}
	}
	if remoteID == "" {
		return nil, &ProviderError{Op: "create meeting"}
	}

	m := &model.Meeting{
		ID:        uuid.New().String(),
		RemoteID:  remoteID,
		Topic:     topic,
		StartTime: start,
		EndTime:   end,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateMeeting(ctx, m); err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, ownerID, m, s.notifier.MeetingCreated)
	return m, nil
}

func (s *MeetingService) ListMeetings(ctx context.Context, ownerID string) ([]model.Meeting, error) {
	if ownerID == "" {
		return []model.Meeting{}, nil
	}
	return s.store.ListMeetingsByOwner(ctx, ownerID)
}

func (s *MeetingService) GetMeeting(ctx context.Context, ownerID, id string) (*model.Meeting, error) {
	m, err := s.store.MeetingOwnedBy(ctx, id, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

// DeleteMeeting removes a meeting the requester owns. The provider delete
// gates everything: on provider failure nothing local changes and no mail
// goes out. On success the owner gets a deletion notice, every booking
// holder gets a cancellation notice, then the row is deleted and bookings
// cascade with it.
func (s *MeetingService) DeleteMeeting(ctx context.Context, ownerID, id string) error {
	m, err := s.store.MeetingOwnedBy(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.provider.DeleteMeeting(ctx, m.RemoteID); err != nil {
		return &ProviderError{Op: "delete meeting", Err: err}
	}

	s.notifyOwner(ctx, ownerID, m, s.notifier.MeetingDeleted)

	bookings, err := s.store.ListBookingsByMeeting(ctx, m.ID)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		s.notifyOwner(ctx, b.OwnerID, m, s.notifier.BookingCancelled)
	}

	return s.store.DeleteMeeting(ctx, m.ID)
}

// Available returns the meetings the given user could book right now:
// everything starting at or after now that they haven't already booked.
// An empty userID is valid and excludes nothing.
func (s *MeetingService) Available(ctx context.Context, userID string, now time.Time) ([]model.Meeting, error) {
	return s.store.ListAvailableMeetings(ctx, userID, now)
}

// notifyOwner resolves the user's address and sends; failures are logged,
// never propagated.
func (s *MeetingService) notifyOwner(ctx context.Context, userID string, m *model.Meeting, send func(string, *model.Meeting) error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		log.Printf("notify: lookup user %s: %v", userID, err)
		return
	}
	if err := send(u.Email, m); err != nil {
		log.Printf("notify %s about %q: %v", u.Email, m.Topic, err)
	}
}
