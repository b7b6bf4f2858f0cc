package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-api/internal/model"
	"booking-api/internal/service"
	"booking-api/internal/store/memory"
)

type bookingFixture struct {
	st       *memory.Store
	notifier *fakeNotifier
	provider *fakeProvider
	meetings *service.MeetingService
	bookings *service.BookingService
	owner    string
	user     string
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	st := memory.New()
	notifier := &fakeNotifier{}
	provider := &fakeProvider{nextID: "100"}
	return &bookingFixture{
		st:       st,
		notifier: notifier,
		provider: provider,
		meetings: service.NewMeetingService(st, provider, notifier),
		bookings: service.NewBookingService(st, notifier),
		owner:    addUser(t, st, "owner@test.com"),
		user:     addUser(t, st, "user@test.com"),
	}
}

func (f *bookingFixture) meeting(t *testing.T, remoteID, topic string) *model.Meeting {
	t.Helper()
	f.provider.nextID = remoteID
	start := time.Now().Add(24 * time.Hour)
	m, err := f.meetings.CreateMeeting(context.Background(), f.owner, topic, start, start.Add(time.Hour))
	require.NoError(t, err)
	return m
}

func TestListBookingsAnonymous(t *testing.T) {
	f := newBookingFixture(t)
	out, err := f.bookings.ListBookings(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCreateBookingMissingMeeting(t *testing.T) {
	f := newBookingFixture(t)
	_, err := f.bookings.CreateBooking(context.Background(), f.user, "no-such-meeting")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")
	f.notifier.sent = nil

	b, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, f.user, b.OwnerID)
	assert.Equal(t, m.ID, b.MeetingID)

	confirmed := f.notifier.byKind("booking_confirmed")
	require.Len(t, confirmed, 1)
	assert.Equal(t, "user@test.com", confirmed[0].to)
	assert.Equal(t, "Standup", confirmed[0].topic)
}

func TestCreateBookingDuplicate(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	_, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)

	_, err = f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)

	rows, err := f.st.ListBookingsByOwner(context.Background(), f.user)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// Racing the same (user, meeting) pair: exactly one booking survives.
func TestCreateBookingConcurrent(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.bookings.CreateBooking(context.Background(), f.user, m.ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var ve *service.ValidationError
		assert.True(t, errors.As(err, &ve), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok, "exactly one concurrent booking should win")

	rows, err := f.st.ListBookingsByOwner(context.Background(), f.user)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetBookingScopedToOwner(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)

	got, err := f.bookings.GetBooking(context.Background(), f.user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.bookings.GetBooking(context.Background(), f.owner, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateBooking(t *testing.T) {
	f := newBookingFixture(t)
	first := f.meeting(t, "100", "Standup")
	second := f.meeting(t, "101", "Retro")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, first.ID)
	require.NoError(t, err)
	f.notifier.sent = nil

	got, err := f.bookings.UpdateBooking(context.Background(), f.user, b.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.MeetingID)
	assert.Empty(t, f.notifier.sent, "rebooking sends no mail")
}

func TestUpdateBookingMissingMeeting(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)

	_, err = f.bookings.UpdateBooking(context.Background(), f.user, b.ID, "no-such-meeting")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateBookingNotOwner(t *testing.T) {
	f := newBookingFixture(t)
	first := f.meeting(t, "100", "Standup")
	second := f.meeting(t, "101", "Retro")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, first.ID)
	require.NoError(t, err)

	_, err = f.bookings.UpdateBooking(context.Background(), f.owner, b.ID, second.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateBookingDuplicate(t *testing.T) {
	f := newBookingFixture(t)
	first := f.meeting(t, "100", "Standup")
	second := f.meeting(t, "101", "Retro")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, first.ID)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(context.Background(), f.user, second.ID)
	require.NoError(t, err)

	_, err = f.bookings.UpdateBooking(context.Background(), f.user, b.ID, second.ID)
	var ve *service.ValidationError
	assert.True(t, errors.As(err, &ve), "moving onto an already-booked meeting must fail, got %v", err)
}

func TestDeleteBookingNotifiesBeforeRemoval(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)

	// the cancellation mail goes out while the row still exists
	f.notifier.onSend = func(kind, to string) {
		if kind != "booking_cancelled" {
			return
		}
		_, err := f.st.BookingOwnedBy(context.Background(), b.ID, f.user)
		assert.NoError(t, err, "booking should still exist when the mail is sent")
	}

	require.NoError(t, f.bookings.DeleteBooking(context.Background(), f.user, b.ID))

	cancelled := f.notifier.byKind("booking_cancelled")
	require.Len(t, cancelled, 1)
	assert.Equal(t, "user@test.com", cancelled[0].to)

	_, err = f.bookings.GetBooking(context.Background(), f.user, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteBookingNotOwner(t *testing.T) {
	f := newBookingFixture(t)
	m := f.meeting(t, "100", "Standup")

	b, err := f.bookings.CreateBooking(context.Background(), f.user, m.ID)
	require.NoError(t, err)

	err = f.bookings.DeleteBooking(context.Background(), f.owner, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.bookings.GetBooking(context.Background(), f.user, b.ID)
	assert.NoError(t, err, "foreign delete attempt must not remove the booking")
}
