package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"teamregistry/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO registrations (event_id, leader_user_id, leader_name, leader_email, team_name, status, checked_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		reg.EventID, reg.LeaderUserID, reg.LeaderName, reg.LeaderEmail,
		reg.TeamName, reg.Status, reg.CheckedIn, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateRegistration
		}
		return err
	}

	memberQuery := `
		INSERT INTO registration_members (registration_id, email, name, user_id, attended, position)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`
	for i, m := range reg.Members {
		if _, err := tx.ExecContext(ctx, memberQuery, reg.ID, m.Email, m.Name, m.UserID, m.Attended, i+1); err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return domain.ErrDuplicateMember
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, leader_user_id, leader_name, leader_email, team_name, status, checked_in, qr_code, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	members, err := r.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	reg.Members = members
	return reg, nil
}

func (r *registrationRepository) GetByEventAndLeader(ctx context.Context, eventID, leaderUserID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, leader_user_id, leader_name, leader_email, team_name, status, checked_in, qr_code, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND leader_user_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, leaderUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	members, err := r.listMembers(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	reg.Members = members
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, leader_user_id, leader_name, leader_email, team_name, status, checked_in, qr_code, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	regs, err := r.listRegistrations(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	if err := r.attachMembers(ctx, regs, `
		SELECT m.registration_id, m.email, m.name, m.user_id, m.attended
		FROM registration_members m
		JOIN registrations r ON r.id = m.registration_id
		WHERE r.event_id = $1
		ORDER BY m.registration_id, m.position
	`, eventID); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) ListByLeaderID(ctx context.Context, leaderUserID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, leader_user_id, leader_name, leader_email, team_name, status, checked_in, qr_code, created_at, updated_at
		FROM registrations
		WHERE leader_user_id = $1
		ORDER BY created_at DESC
	`
	regs, err := r.listRegistrations(ctx, query, leaderUserID)
	if err != nil {
		return nil, err
	}
	if err := r.attachMembers(ctx, regs, `
		SELECT m.registration_id, m.email, m.name, m.user_id, m.attended
		FROM registration_members m
		JOIN registrations r ON r.id = m.registration_id
		WHERE r.leader_user_id = $1
		ORDER BY m.registration_id, m.position
	`, leaderUserID); err != nil {
		return nil, err
	}
	return regs, nil
}

// TransitionStatus is a conditional update guarded by status = 'pending' so a
// double-accept/double-reject race resolves to exactly one winner. The QR
// credential is only set once.
func (r *registrationRepository) TransitionStatus(ctx context.Context, id string, to domain.RegistrationStatus, qrCode string) (bool, error) {
	query := `
		UPDATE registrations
		SET status = $2, qr_code = COALESCE(qr_code, NULLIF($3, '')), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, id, to, qrCode)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) SetCheckedIn(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE registrations
		SET checked_in = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = 'accepted'
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) SetMemberAttended(ctx context.Context, id, email string) (bool, error) {
	query := `
		UPDATE registration_members m
		SET attended = TRUE
		FROM registrations r
		WHERE m.registration_id = r.id AND r.id = $1 AND m.email = $2 AND r.status = 'accepted'
	`
	result, err := r.DB.ExecContext(ctx, query, id, email)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// AddMember relies on the unique (registration_id, email) index to reject a
// duplicate, so two concurrent appends of the same email insert exactly once.
func (r *registrationRepository) AddMember(ctx context.Context, id string, m domain.TeamMember) error {
	query := `
		INSERT INTO registration_members (registration_id, email, name, user_id, attended, position)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM registration_members WHERE registration_id = $1))
	`
	_, err := r.DB.ExecContext(ctx, query, id, m.Email, m.Name, m.UserID, m.Attended)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return domain.ErrDuplicateMember
			case "23503":
				return domain.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *registrationRepository) CountMembers(ctx context.Context, id string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registration_members WHERE registration_id = $1`, id).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var qrCode sql.NullString
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.LeaderUserID, &reg.LeaderName, &reg.LeaderEmail,
		&reg.TeamName, &reg.Status, &reg.CheckedIn, &qrCode, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.QRCode = qrCode.String
	return reg, nil
}

func (r *registrationRepository) listRegistrations(ctx context.Context, query string, arg any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		reg.Members = []domain.TeamMember{}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) attachMembers(ctx context.Context, regs []*domain.Registration, query string, arg any) error {
	if len(regs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Registration, len(regs))
	for _, reg := range regs {
		byID[reg.ID] = reg
	}
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var regID string
		var m domain.TeamMember
		var userID sql.NullString
		if err := rows.Scan(&regID, &m.Email, &m.Name, &userID, &m.Attended); err != nil {
			return err
		}
		m.UserID = userID.String
		if reg, ok := byID[regID]; ok {
			reg.Members = append(reg.Members, m)
		}
	}
	return rows.Err()
}

func (r *registrationRepository) listMembers(ctx context.Context, id string) ([]domain.TeamMember, error) {
	query := `
		SELECT email, name, user_id, attended
		FROM registration_members
		WHERE registration_id = $1
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		var userID sql.NullString
		if err := rows.Scan(&m.Email, &m.Name, &userID, &m.Attended); err != nil {
			return nil, err
		}
		m.UserID = userID.String
		members = append(members, m)
	}
	return members, rows.Err()
}
