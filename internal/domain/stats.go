package domain

import (
	"context"
	"time"
)

// TeamRow is one registration flattened for the organizer dashboard.
// swagger:model TeamRow
type TeamRow struct {
	RegistrationID string             `json:"registration_id"`
	TeamName       string             `json:"team_name"`
	LeaderName     string             `json:"leader_name"`
	LeaderEmail    string             `json:"leader_email"`
	Members        []TeamMember       `json:"members"`
	Status         RegistrationStatus `json:"status"`
	CheckedIn      bool               `json:"checked_in"`
	QRCode         string             `json:"qr_code,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// EventStats is the derived dashboard view over an event's registrations.
// Counts are order-independent sums; Teams preserves registration order as
// returned by the store. Completed-event extras are passed through from the
// event record unchanged.
// swagger:model EventStats
type EventStats struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`

	TotalRegistrations int `json:"total_registrations"`
	Accepted           int `json:"accepted"`
	Pending            int `json:"pending"`
	Rejected           int `json:"rejected"`
	TotalAttendees     int `json:"total_attendees"`
	CheckedInAttendees int `json:"checked_in_attendees"`

	Teams []TeamRow `json:"teams"`

	Completed    bool              `json:"completed"`
	Winners      []string          `json:"winners,omitempty"`
	EventPhotos  []string          `json:"event_photos,omitempty"`
	Highlights   []string          `json:"highlights,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Testimonials []string          `json:"testimonials,omitempty"`
	Statistics   map[string]string `json:"statistics,omitempty"`
}

// StatsService computes event statistics for the organizer dashboard.
type StatsService interface {
	EventStats(ctx context.Context, eventID, callerID string) (*EventStats, error)
}
