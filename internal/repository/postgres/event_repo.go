package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"teamregistry/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	stats, err := json.Marshal(event.Statistics)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (
			owner_id, title, description, location, location_lat, location_lng,
			registration_opens_at, registration_closes_at, starts_at, ends_at,
			paid, fee_cents, currency, completed,
			winners, event_photos, highlights, summary, testimonials, statistics,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		event.OwnerID, event.Title, event.Description, event.Location, event.LocationLat, event.LocationLng,
		event.RegistrationOpensAt, event.RegistrationClosesAt, event.StartsAt, event.EndsAt,
		event.Paid, event.FeeCents, event.Currency, event.Completed,
		pq.Array(event.Winners), pq.Array(event.EventPhotos), pq.Array(event.Highlights),
		event.Summary, pq.Array(event.Testimonials), stats,
		event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, owner_id, title, description, location, location_lat, location_lng,
			registration_opens_at, registration_closes_at, starts_at, ends_at,
			paid, fee_cents, currency, completed,
			winners, event_photos, highlights, summary, testimonials, statistics,
			created_at, updated_at
		FROM events
		WHERE id = $1
	`
	event := &domain.Event{}
	var summary sql.NullString
	var stats []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.OwnerID, &event.Title, &event.Description,
		&event.Location, &event.LocationLat, &event.LocationLng,
		&event.RegistrationOpensAt, &event.RegistrationClosesAt, &event.StartsAt, &event.EndsAt,
		&event.Paid, &event.FeeCents, &event.Currency, &event.Completed,
		pq.Array(&event.Winners), pq.Array(&event.EventPhotos), pq.Array(&event.Highlights),
		&summary, pq.Array(&event.Testimonials), &stats,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	event.Summary = summary.String
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &event.Statistics); err != nil {
			return nil, err
		}
	}
	return event, nil
}
