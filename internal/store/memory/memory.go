// Package memory provides an in-memory implementation of store.Store. It
// enforces the same uniqueness and cascade invariants as the SQL schema so
// tests exercise real constraint behavior.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	users         map[string]*model.User
	meetings      map[string]*model.Meeting
	bookings      map[string]*model.Booking
	refreshTokens map[string]*store.RefreshToken
}

func New() *Store {
	return &Store{
		users:         make(map[string]*model.User),
		meetings:      make(map[string]*model.Meeting),
		bookings:      make(map[string]*model.Booking),
		refreshTokens: make(map[string]*store.RefreshToken),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.users[cp.ID] = &cp
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.meetings {
		if existing.RemoteID == m.RemoteID {
			return store.ErrDuplicate
		}
	}
	cp := *m
	s.meetings[cp.ID] = &cp
	return nil
}

func (s *Store) MeetingByID(ctx context.Context, id string) (*model.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) MeetingOwnedBy(ctx context.Context, id, ownerID string) (*model.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok || m.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ListMeetingsByOwner(ctx context.Context, ownerID string) ([]model.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Meeting
	for _, m := range s.meetings {
		if m.OwnerID == ownerID {
			out = append(out, *m)
		}
	}
	sortMeetings(out)
	return out, nil
}

func (s *Store) ListAvailableMeetings(ctx context.Context, userID string, now time.Time) ([]model.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	booked := make(map[string]bool)
	if userID != "" {
		for _, b := range s.bookings {
			if b.OwnerID == userID {
				booked[b.MeetingID] = true
			}
		}
	}
	var out []model.Meeting
	for _, m := range s.meetings {
		if m.StartTime.Before(now) || booked[m.ID] {
			continue
		}
		out = append(out, *m)
	}
	sortMeetings(out)
	return out, nil
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.meetings, id)
	// cascade
	for bid, b := range s.bookings {
		if b.MeetingID == id {
			delete(s.bookings, bid)
		}
	}
	return nil
}

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[b.MeetingID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.bookings {
		if existing.OwnerID == b.OwnerID && existing.MeetingID == b.MeetingID {
			return store.ErrDuplicate
		}
	}
	cp := *b
	s.bookings[cp.ID] = &cp
	return nil
}

func (s *Store) BookingOwnedBy(ctx context.Context, id, ownerID string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok || b.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBookingsByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) ListBookingsByMeeting(ctx context.Context, meetingID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.MeetingID == meetingID {
			out = append(out, *b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) UpdateBookingMeeting(ctx context.Context, id, ownerID, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.OwnerID != ownerID {
		return store.ErrNotFound
	}
	if _, ok := s.meetings[meetingID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.bookings {
		if existing.ID != id && existing.OwnerID == ownerID && existing.MeetingID == meetingID {
			return store.ErrDuplicate
		}
	}
	b.MeetingID = meetingID
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.bookings, b.ID)
	return nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.refreshTokens[id] = &store.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (s *Store) RefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rt := range s.refreshTokens {
		if rt.TokenHash == tokenHash {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.refreshTokens[oldID]; ok {
		old.Revoked = true
		id := newID
		old.ReplacedBy = &id
	}
	s.refreshTokens[newID] = &store.RefreshToken{
		ID:        newID,
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: newExpiry,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *Store) RevokeRefreshTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.refreshTokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

func sortMeetings(ms []model.Meeting) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].StartTime.Equal(ms[j].StartTime) {
			return ms[i].StartTime.Before(ms[j].StartTime)
		}
		return ms[i].ID < ms[j].ID
	})
}

func sortBookings(bs []model.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.Before(bs[j].CreatedAt)
		}
		return bs[i].ID < bs[j].ID
	})
}
