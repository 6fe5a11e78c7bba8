package domain

import (
	"context"
	"errors"
	"time"
)

// ErrRegistrationClosed is returned when registering outside the event's registration window.
var ErrRegistrationClosed = errors.New("registration window closed")

// Event represents an event teams can register for. The registration core
// reads events; event authoring belongs to the organizer subsystem.
// swagger:model Event
type Event struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	LocationLat float64 `json:"location_lat"`
	LocationLng float64 `json:"location_lng"`

	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	StartsAt             time.Time `json:"starts_at"`
	EndsAt               time.Time `json:"ends_at"`

	// Paid events gate registration on a verified payment signal.
	Paid     bool   `json:"paid"`
	FeeCents int64  `json:"fee_cents"`
	Currency string `json:"currency"`

	// Post-event fields, populated by the organizer once the event completes.
	Completed    bool              `json:"completed"`
	Winners      []string          `json:"winners,omitempty"`
	EventPhotos  []string          `json:"event_photos,omitempty"`
	Highlights   []string          `json:"highlights,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Testimonials []string          `json:"testimonials,omitempty"`
	Statistics   map[string]string `json:"statistics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegistrationOpen reports whether the event accepts registrations at t.
// A zero-valued window means the event never closes registration.
func (e *Event) RegistrationOpen(t time.Time) bool {
	if !e.RegistrationOpensAt.IsZero() && t.Before(e.RegistrationOpensAt) {
		return false
	}
	if !e.RegistrationClosesAt.IsZero() && t.After(e.RegistrationClosesAt) {
		return false
	}
	return true
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
}
