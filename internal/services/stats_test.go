package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamregistry/internal/domain"
)

func TestAggregateEventStats_Empty(t *testing.T) {
	event := &domain.Event{ID: "e1", OwnerID: "org1", Title: "Hack Night"}

	stats := AggregateEventStats(event, nil)

	if stats.TotalRegistrations != 0 || stats.Accepted != 0 || stats.Pending != 0 || stats.Rejected != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.TotalAttendees != 0 || stats.CheckedInAttendees != 0 {
		t.Errorf("expected zero attendees, got %+v", stats)
	}
	if len(stats.Teams) != 0 {
		t.Errorf("expected no teams, got %d", len(stats.Teams))
	}
	if stats.EventID != "e1" || stats.EventTitle != "Hack Night" {
		t.Errorf("expected event identity passthrough, got %+v", stats)
	}
}

func TestAggregateEventStats_Counts(t *testing.T) {
	event := &domain.Event{ID: "e1", OwnerID: "org1", Title: "Hack Night"}
	regs := []*domain.Registration{
		{
			ID: "r1", TeamName: "Rocket", Status: domain.StatusAccepted, CheckedIn: true,
			Members: []domain.TeamMember{
				{Email: "a@example.com", Attended: true},
				{Email: "b@example.com"},
			},
		},
		{
			ID: "r2", TeamName: "Comet", Status: domain.StatusPending,
			Members: []domain.TeamMember{{Email: "c@example.com"}},
		},
		{
			ID: "r3", TeamName: "Meteor", Status: domain.StatusRejected,
		},
	}

	stats := AggregateEventStats(event, regs)

	if stats.TotalRegistrations != 3 {
		t.Errorf("TotalRegistrations = %d, want 3", stats.TotalRegistrations)
	}
	if stats.Accepted != 1 || stats.Pending != 1 || stats.Rejected != 1 {
		t.Errorf("status counts = %d/%d/%d, want 1/1/1", stats.Accepted, stats.Pending, stats.Rejected)
	}
	// Each registration counts its leader plus members: (1+2) + (1+1) + (1+0).
	if stats.TotalAttendees != 6 {
		t.Errorf("TotalAttendees = %d, want 6", stats.TotalAttendees)
	}
	// One checked-in leader plus one attended member.
	if stats.CheckedInAttendees != 2 {
		t.Errorf("CheckedInAttendees = %d, want 2", stats.CheckedInAttendees)
	}
	if len(stats.Teams) != 3 {
		t.Fatalf("expected 3 team rows, got %d", len(stats.Teams))
	}
	// Team rows preserve input order.
	for i, want := range []string{"Rocket", "Comet", "Meteor"} {
		if stats.Teams[i].TeamName != want {
			t.Errorf("Teams[%d] = %s, want %s", i, stats.Teams[i].TeamName, want)
		}
	}
	if stats.Teams[2].Members == nil {
		t.Error("a team without members must get an empty slice, not nil")
	}
}

func TestAggregateEventStats_Deterministic(t *testing.T) {
	event := &domain.Event{ID: "e1", Title: "Hack Night"}
	regs := []*domain.Registration{
		{ID: "r1", Status: domain.StatusAccepted, CheckedIn: true, Members: []domain.TeamMember{{Email: "a@example.com"}}},
		{ID: "r2", Status: domain.StatusPending},
	}

	first := AggregateEventStats(event, regs)
	second := AggregateEventStats(event, regs)

	if first.TotalRegistrations != second.TotalRegistrations ||
		first.TotalAttendees != second.TotalAttendees ||
		first.CheckedInAttendees != second.CheckedInAttendees {
		t.Error("aggregation must be deterministic for identical inputs")
	}
}

func TestAggregateEventStats_CompletedEventExtras(t *testing.T) {
	event := &domain.Event{
		ID: "e1", Title: "Hack Night",
		Completed:    true,
		Winners:      []string{"Rocket"},
		Highlights:   []string{"48h build"},
		Summary:      "A good one.",
		Testimonials: []string{"loved it"},
		Statistics:   map[string]string{"projects": "12"},
	}

	stats := AggregateEventStats(event, nil)

	if !stats.Completed {
		t.Error("expected completed passthrough")
	}
	if len(stats.Winners) != 1 || stats.Winners[0] != "Rocket" {
		t.Errorf("unexpected winners: %v", stats.Winners)
	}
	if stats.Summary != "A good one." {
		t.Errorf("unexpected summary: %q", stats.Summary)
	}
	if stats.Statistics["projects"] != "12" {
		t.Errorf("unexpected statistics: %v", stats.Statistics)
	}
}

func TestStatsService_EventStats_Authorization(t *testing.T) {
	ctx := context.Background()
	eventRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": {ID: "e1", OwnerID: "org1", Title: "Hack Night"}}}
	regRepo := &fakeRegistrationRepo{regs: map[string]*domain.Registration{
		"r1": {ID: "r1", EventID: "e1", LeaderUserID: "u1", Status: domain.StatusPending},
	}}
	svc := NewStatsService(eventRepo, regRepo)

	if _, err := svc.EventStats(ctx, "e1", "someone-else"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.EventStats(ctx, "missing", "org1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}

	stats, err := svc.EventStats(ctx, "e1", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalRegistrations != 1 || stats.Pending != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestStatsService_EventStats_SnapshotReflectsLifecycle(t *testing.T) {
	ctx := context.Background()
	eventRepo := &fakeEventRepo{events: map[string]*domain.Event{"e1": {ID: "e1", OwnerID: "org1", Title: "Hack Night"}}}
	reg := &domain.Registration{
		ID: "r1", EventID: "e1", LeaderUserID: "u1", Status: domain.StatusPending,
		CreatedAt: time.Now(),
	}
	regRepo := &fakeRegistrationRepo{regs: map[string]*domain.Registration{"r1": reg}}
	svc := NewStatsService(eventRepo, regRepo)

	before, err := svc.EventStats(ctx, "e1", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.Accepted != 0 || before.Pending != 1 {
		t.Errorf("unexpected stats before accept: %+v", before)
	}

	reg.Status = domain.StatusAccepted
	reg.CheckedIn = true

	after, err := svc.EventStats(ctx, "e1", "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Accepted != 1 || after.Pending != 0 || after.CheckedInAttendees != 1 {
		t.Errorf("unexpected stats after accept: %+v", after)
	}
}
