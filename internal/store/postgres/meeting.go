package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

const meetingCols = `id, remote_id, topic, start_time, end_time, owner_id, created_at`

func scanMeeting(row pgx.Row) (*model.Meeting, error) {
	m := &model.Meeting{}
	err := row.Scan(&m.ID, &m.RemoteID, &m.Topic, &m.StartTime, &m.EndTime, &m.OwnerID, &m.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO meetings (id, remote_id, topic, start_time, end_time, owner_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.RemoteID, m.Topic, m.StartTime, m.EndTime, m.OwnerID, m.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) MeetingByID(ctx context.Context, id string) (*model.Meeting, error) {
	return scanMeeting(s.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE id = $1`, id))
}

func (s *Store) MeetingOwnedBy(ctx context.Context, id, ownerID string) (*model.Meeting, error) {
	return scanMeeting(s.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

func (s *Store) ListMeetingsByOwner(ctx context.Context, ownerID string) ([]model.Meeting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingCols+` FROM meetings
		 WHERE owner_id = $1
		 ORDER BY start_time`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

func (s *Store) ListAvailableMeetings(ctx context.Context, userID string, now time.Time) ([]model.Meeting, error) {
	// The NOT EXISTS join against an empty userID matches nothing, so
	// anonymous callers see every future meeting.
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingCols+` FROM meetings m
		 WHERE m.start_time >= $2
		   AND NOT EXISTS (
		       SELECT 1 FROM bookings b
		       WHERE b.meeting_id = m.id AND b.owner_id::text = $1)
		 ORDER BY m.start_time`, userID, now,
	)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectMeetings(rows pgx.Rows) ([]model.Meeting, error) {
	defer rows.Close()
	var out []model.Meeting
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(&m.ID, &m.RemoteID, &m.Topic, &m.StartTime, &m.EndTime, &m.OwnerID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
