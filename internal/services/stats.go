package services

import (
	"context"
	"errors"
	"fmt"

	"teamregistry/internal/domain"
)

type statsService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
}

// NewStatsService creates a StatsService reading over whatever snapshot the
// repositories return; the aggregation itself holds no state.
func NewStatsService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository) domain.StatsService {
	return &statsService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
	}
}

func (s *statsService) EventStats(ctx context.Context, eventID, callerID string) (*domain.EventStats, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return AggregateEventStats(event, regs), nil
}

// AggregateEventStats folds an event's registrations into dashboard
// statistics. It is a pure function: identical inputs yield identical
// outputs, the sums are order-independent, and the teams listing preserves
// the order of regs as given. Every registration counts its leader plus all
// listed members toward totalAttendees regardless of status or attendance.
func AggregateEventStats(event *domain.Event, regs []*domain.Registration) *domain.EventStats {
	stats := &domain.EventStats{
		EventID:    event.ID,
		EventTitle: event.Title,
		Teams:      make([]domain.TeamRow, 0, len(regs)),

		Completed:    event.Completed,
		Winners:      event.Winners,
		EventPhotos:  event.EventPhotos,
		Highlights:   event.Highlights,
		Summary:      event.Summary,
		Testimonials: event.Testimonials,
		Statistics:   event.Statistics,
	}

	for _, reg := range regs {
		stats.TotalRegistrations++
		switch reg.Status {
		case domain.StatusAccepted:
			stats.Accepted++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusRejected:
			stats.Rejected++
		}

		stats.TotalAttendees += 1 + len(reg.Members)
		if reg.CheckedIn {
			stats.CheckedInAttendees++
		}
		for _, m := range reg.Members {
			if m.Attended {
				stats.CheckedInAttendees++
			}
		}

		members := reg.Members
		if members == nil {
			members = []domain.TeamMember{}
		}
		stats.Teams = append(stats.Teams, domain.TeamRow{
			RegistrationID: reg.ID,
			TeamName:       reg.TeamName,
			LeaderName:     reg.LeaderName,
			LeaderEmail:    reg.LeaderEmail,
			Members:        members,
			Status:         reg.Status,
			CheckedIn:      reg.CheckedIn,
			QRCode:         reg.QRCode,
			CreatedAt:      reg.CreatedAt,
		})
	}

	return stats
}
