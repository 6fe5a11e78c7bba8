package services

import (
	"context"
	"time"

	"teamregistry/internal/domain"
)

// In-memory fakes shared by the service tests. They implement just enough
// behavior for the flows under test; unused methods return zero values.

type fakeEventRepo struct {
	events map[string]*domain.Event
	err    error
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error { return nil }

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

type fakeRegistrationRepo struct {
	regs map[string]*domain.Registration

	createErr       error
	transitionErr   error
	transitionMoved *bool // nil means derive from status
	checkedInOK     bool
	attendedOK      bool
	addMemberErr    error
	listErr         error
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if reg.ID == "" {
		reg.ID = "reg-" + reg.TeamName
	}
	if f.regs == nil {
		f.regs = map[string]*domain.Registration{}
	}
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Like the real repository, return a fresh value each call so callers
	// can't mutate the stored registration through the returned pointer.
	cp := *reg
	cp.Members = append([]domain.TeamMember(nil), reg.Members...)
	return &cp, nil
}

func (f *fakeRegistrationRepo) GetByEventAndLeader(ctx context.Context, eventID, leaderUserID string) (*domain.Registration, error) {
	for _, reg := range f.regs {
		if reg.EventID == eventID && reg.LeaderUserID == leaderUserID {
			return reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Registration
	for _, reg := range f.regs {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByLeaderID(ctx context.Context, leaderUserID string) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Registration
	for _, reg := range f.regs {
		if reg.LeaderUserID == leaderUserID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) TransitionStatus(ctx context.Context, id string, to domain.RegistrationStatus, qrCode string) (bool, error) {
	if f.transitionErr != nil {
		return false, f.transitionErr
	}
	if f.transitionMoved != nil {
		return *f.transitionMoved, nil
	}
	reg, ok := f.regs[id]
	if !ok || reg.Status != domain.StatusPending {
		return false, nil
	}
	reg.Status = to
	if qrCode != "" {
		reg.QRCode = qrCode
	}
	return true, nil
}

func (f *fakeRegistrationRepo) SetCheckedIn(ctx context.Context, id string) (bool, error) {
	reg, ok := f.regs[id]
	if !ok || reg.Status != domain.StatusAccepted {
		return false, nil
	}
	reg.CheckedIn = true
	return true, nil
}

func (f *fakeRegistrationRepo) SetMemberAttended(ctx context.Context, id, email string) (bool, error) {
	reg, ok := f.regs[id]
	if !ok || reg.Status != domain.StatusAccepted {
		return false, nil
	}
	for i := range reg.Members {
		if reg.Members[i].Email == email {
			reg.Members[i].Attended = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) AddMember(ctx context.Context, id string, m domain.TeamMember) error {
	if f.addMemberErr != nil {
		return f.addMemberErr
	}
	reg, ok := f.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, existing := range reg.Members {
		if existing.Email == m.Email {
			return domain.ErrDuplicateMember
		}
	}
	reg.Members = append(reg.Members, m)
	return nil
}

func (f *fakeRegistrationRepo) CountMembers(ctx context.Context, id string) (int, error) {
	reg, ok := f.regs[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return len(reg.Members), nil
}

type fakeTokenRepo struct {
	tokens map[string]*domain.InvitationToken

	createErr  error
	consumeErr error
	// consumeDenied forces Consume to report a lost race.
	consumeDenied bool
	revoked       int64
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *domain.InvitationToken) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.tokens == nil {
		f.tokens = map[string]*domain.InvitationToken{}
	}
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) GetByToken(ctx context.Context, token string) (*domain.InvitationToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenRepo) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	if f.consumeDenied {
		return false, nil
	}
	t, ok := f.tokens[token]
	if !ok || t.Consumed || at.After(t.ExpiresAt) {
		return false, nil
	}
	t.Consumed = true
	t.ConsumedAt = &at
	return true, nil
}

func (f *fakeTokenRepo) RevokeByRegistrationID(ctx context.Context, registrationID string, at time.Time) (int64, error) {
	var n int64
	for _, t := range f.tokens {
		if t.RegistrationID == registrationID && !t.Consumed {
			t.Consumed = true
			t.ConsumedAt = &at
			n++
		}
	}
	f.revoked += n
	return n, nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeVerificationRepo struct {
	codes map[string]*domain.VerificationCode

	upsertErr error
	deleteErr error
}

func (f *fakeVerificationRepo) Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.codes == nil {
		f.codes = map[string]*domain.VerificationCode{}
	}
	f.codes[email] = &domain.VerificationCode{Email: email, CodeHash: codeHash, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeVerificationRepo) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	c, ok := f.codes[email]
	if !ok || time.Now().After(c.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeVerificationRepo) Delete(ctx context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.codes, email)
	return nil
}

func (f *fakeVerificationRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for k, c := range f.codes {
		if c.ExpiresAt.Before(before) {
			delete(f.codes, k)
			n++
		}
	}
	return n, nil
}

type fakeEmailService struct {
	verificationSent []*domain.VerificationCodeEmailData
	invitationsSent  []*domain.InvitationEmailData
	welcomesSent     []*domain.WelcomeMessageEmailData
	err              error
}

func (f *fakeEmailService) SendVerificationCode(ctx context.Context, data *domain.VerificationCodeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.verificationSent = append(f.verificationSent, data)
	return nil
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.invitationsSent = append(f.invitationsSent, data)
	return nil
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.welcomesSent = append(f.welcomesSent, data)
	return nil
}

type fakePaymentVerifier struct {
	paid bool
	err  error

	calls int
}

func (f *fakePaymentVerifier) VerifySession(ctx context.Context, sessionID, eventID, userID string) (bool, error) {
	f.calls++
	return f.paid, f.err
}
