package domain

import (
	"context"
	"errors"
	"time"
)

// RegistrationStatus is the review status of a registration.
type RegistrationStatus string

// Registration statuses. Pending is the initial state; Accepted and Rejected
// are terminal.
const (
	StatusPending  RegistrationStatus = "pending"
	StatusAccepted RegistrationStatus = "accepted"
	StatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Sentinel errors for registration operations.
var (
	// ErrDuplicateRegistration is returned when the leader already has a registration for the event.
	ErrDuplicateRegistration = errors.New("already registered for this event")
	// ErrInvalidTransition is returned for any status change other than pending to accepted/rejected.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotAccepted is returned when check-in is attempted on a registration that is not accepted.
	ErrNotAccepted = errors.New("registration not accepted")
	// ErrMemberNotFound is returned when the email is not in the registration's team.
	ErrMemberNotFound = errors.New("team member not found")
	// ErrDuplicateMember is returned when the email is already in the registration's team.
	ErrDuplicateMember = errors.New("already a team member")
	// ErrTeamFull is returned when the team has reached the maximum size.
	ErrTeamFull = errors.New("team is full")
)

// TeamMember is a person on a registration's team, added via invitation
// redemption or listed at creation time. UserID is empty until the member
// has an account.
// swagger:model TeamMember
type TeamMember struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserID   string `json:"user_id,omitempty"`
	Attended bool   `json:"attended"`
}

// Registration is one leader-plus-team application to attend a single event.
// swagger:model Registration
type Registration struct {
	ID           string             `json:"id"`
	EventID      string             `json:"event_id"`
	LeaderUserID string             `json:"leader_user_id"`
	LeaderName   string             `json:"leader_name"`
	LeaderEmail  string             `json:"leader_email"`
	TeamName     string             `json:"team_name"`
	Members      []TeamMember       `json:"members"`
	Status       RegistrationStatus `json:"status"`
	CheckedIn    bool               `json:"checked_in"`
	QRCode       string             `json:"qr_code,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewRegistration creates a pending Registration. ID is set by the caller or repository.
func NewRegistration(eventID, leaderUserID, leaderName, leaderEmail, teamName string, members []TeamMember, createdAt time.Time) *Registration {
	if members == nil {
		members = []TeamMember{}
	}
	return &Registration{
		EventID:      eventID,
		LeaderUserID: leaderUserID,
		LeaderName:   leaderName,
		LeaderEmail:  leaderEmail,
		TeamName:     teamName,
		Members:      members,
		Status:       StatusPending,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// HasMember reports whether email is the leader's or a team member's email.
func (r *Registration) HasMember(email string) bool {
	if r.LeaderEmail == email {
		return true
	}
	for _, m := range r.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations and
// their team members. Mutations that race (status transition, member append,
// token-driven writes) are conditional updates at the store, not
// read-then-write pairs.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndLeader(ctx context.Context, eventID, leaderUserID string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByLeaderID(ctx context.Context, leaderUserID string) ([]*Registration, error)
	// TransitionStatus moves the registration from pending to the given
	// terminal status, setting qrCode when provided. Returns false when the
	// registration was not in pending (or does not exist).
	TransitionStatus(ctx context.Context, id string, to RegistrationStatus, qrCode string) (bool, error)
	// SetCheckedIn marks the leader checked in. Only applies while accepted;
	// returns false when no accepted registration matched.
	SetCheckedIn(ctx context.Context, id string) (bool, error)
	// SetMemberAttended marks a member attended. Returns false when the
	// member is absent or the registration is not accepted.
	SetMemberAttended(ctx context.Context, id, email string) (bool, error)
	// AddMember appends a team member; duplicate emails within one
	// registration surface as ErrDuplicateMember.
	AddMember(ctx context.Context, id string, m TeamMember) error
	CountMembers(ctx context.Context, id string) (int, error)
}

// CreateRegistrationInput is the closed input schema for creating a registration.
type CreateRegistrationInput struct {
	EventID          string
	LeaderUserID     string
	LeaderName       string
	LeaderEmail      string
	TeamName         string
	Members          []TeamMember
	PaymentSessionID string
}

// RegistrationService defines the business logic of the registration lifecycle.
// Caller identity is always explicit; nothing is read from ambient state.
type RegistrationService interface {
	Create(ctx context.Context, input CreateRegistrationInput) (*Registration, error)
	TransitionStatus(ctx context.Context, registrationID, callerID string, to RegistrationStatus) (*Registration, error)
	CheckIn(ctx context.Context, registrationID, callerID string) (*Registration, error)
	MarkMemberAttended(ctx context.Context, registrationID, callerID, memberEmail string) (*Registration, error)
	ListMine(ctx context.Context, leaderUserID string) ([]*RegistrationWithEvent, error)
}
