package model

import "time"

// EventType tells whether Location is a meeting URL or a street address.
type EventType string

const (
	EventOnline  EventType = "online"
	EventOffline EventType = "offline"
)

// Event is a meetup or webinar organised by an alumnus.
//
// Date and Time are kept as the backend's plain strings ("2025-03-14",
// "18:30:00"): they are separate columns server-side and carry no zone.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Type        EventType `json:"type"`
	Organizer   int64     `json:"organizer"`
	CreatedAt   time.Time `json:"created_at"`

	// Read-only, derived for the viewer making the request.
	OrganizerName     string        `json:"organizer_name,omitempty"`
	RegisteredUsers   []int64       `json:"registered_users,omitempty"`
	IsRegistered      bool          `json:"is_registered"`
	ParticipantsCount int           `json:"participants_count"`
	Participants      []Participant `json:"participants,omitempty"` // only sent to the organizer
}

// Participant is one registered user as shown to an event's organizer.
type Participant struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// EventInput is the writable part of an Event, used for create and full update.
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Type        EventType `json:"type"`
}
