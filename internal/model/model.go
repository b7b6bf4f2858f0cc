package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Meeting is a bookable slot backed by a record in the external scheduling
// provider. RemoteID is assigned by the provider and never changes; a row
// only exists once the provider has confirmed creation.
type Meeting struct {
	ID        string    `json:"id"`
	RemoteID  string    `json:"remote_id"`
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking is a user's reservation against a Meeting. A user holds at most
// one Booking per Meeting.
type Booking struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	MeetingID string    `json:"meeting_id"`
	CreatedAt time.Time `json:"created_at"`
}
