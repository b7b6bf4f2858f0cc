package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bookings (id, owner_id, meeting_id, created_at) VALUES ($1,$2,$3,$4)`,
		b.ID, b.OwnerID, b.MeetingID, b.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) BookingOwnedBy(ctx context.Context, id, ownerID string) (*model.Booking, error) {
	b := &model.Booking{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, meeting_id, created_at
		 FROM bookings WHERE id = $1 AND owner_id = $2`, id, ownerID,
	).Scan(&b.ID, &b.OwnerID, &b.MeetingID, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (s *Store) ListBookingsByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, meeting_id, created_at
		 FROM bookings WHERE owner_id = $1
		 ORDER BY created_at, id`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (s *Store) ListBookingsByMeeting(ctx context.Context, meetingID string) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, meeting_id, created_at
		 FROM bookings WHERE meeting_id = $1
		 ORDER BY created_at, id`, meetingID,
	)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (s *Store) UpdateBookingMeeting(ctx context.Context, id, ownerID, meetingID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bookings SET meeting_id = $1 WHERE id = $2 AND owner_id = $3`,
		meetingID, id, ownerID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bookings WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.MeetingID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
