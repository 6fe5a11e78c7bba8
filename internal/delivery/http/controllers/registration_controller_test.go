package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/domain"
)

type mockRegistrationService struct {
	reg        *domain.Registration
	regs       []*domain.RegistrationWithEvent
	err        error
	lastInput  domain.CreateRegistrationInput
	lastStatus domain.RegistrationStatus
	lastEmail  string
}

func (m *mockRegistrationService) Create(ctx context.Context, input domain.CreateRegistrationInput) (*domain.Registration, error) {
	m.lastInput = input
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) TransitionStatus(ctx context.Context, registrationID, callerID string, to domain.RegistrationStatus) (*domain.Registration, error) {
	m.lastStatus = to
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) CheckIn(ctx context.Context, registrationID, callerID string) (*domain.Registration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) MarkMemberAttended(ctx context.Context, registrationID, callerID, memberEmail string) (*domain.Registration, error) {
	m.lastEmail = memberEmail
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) ListMine(ctx context.Context, leaderUserID string) ([]*domain.RegistrationWithEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.regs, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.SetUserID(req.Context(), "u1"))
}

func TestRegistrationController_Create_Success(t *testing.T) {
	svc := &mockRegistrationService{reg: &domain.Registration{ID: "r1", Status: domain.StatusPending}}
	userSvc := &mockUserService{user: &domain.User{ID: "u1", Name: "Alice", LastName: "Smith", Email: "alice@example.com"}}
	ctrl := NewRegistrationController(testLogger(), svc, userSvc)

	body := `{"event_id":"e1","team_name":"Rocket","members":[{"name":"Bob","email":"bob@example.com"}]}`
	w := httptest.NewRecorder()
	ctrl.Create(w, authedRequest(http.MethodPost, "/registrations", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if svc.lastInput.LeaderUserID != "u1" {
		t.Errorf("expected leader from token, got %q", svc.lastInput.LeaderUserID)
	}
	if svc.lastInput.LeaderEmail != "alice@example.com" {
		t.Errorf("expected leader email resolved from account, got %q", svc.lastInput.LeaderEmail)
	}
	if svc.lastInput.LeaderName != "Alice Smith" {
		t.Errorf("expected full leader name, got %q", svc.lastInput.LeaderName)
	}
}

func TestRegistrationController_Create_Unauthorized(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{}, &mockUserService{})

	body := `{"event_id":"e1","team_name":"Rocket"}`
	req := httptest.NewRequest(http.MethodPost, "/registrations", strings.NewReader(body))
	w := httptest.NewRecorder()
	ctrl.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRegistrationController_Create_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "duplicate", err: domain.ErrDuplicateRegistration, wantCode: http.StatusConflict, wantErr: helpers.ErrCodeConflict},
		{name: "window closed", err: domain.ErrRegistrationClosed, wantCode: http.StatusConflict, wantErr: helpers.ErrCodeRegistrationClosed},
		{name: "payment required", err: domain.ErrPaymentRequired, wantCode: http.StatusPaymentRequired, wantErr: helpers.ErrCodePaymentRequired},
		{name: "payment unverified", err: domain.ErrPaymentUnverified, wantCode: http.StatusPaymentRequired, wantErr: helpers.ErrCodePaymentUnverified},
		{name: "event missing", err: domain.ErrNotFound, wantCode: http.StatusNotFound, wantErr: helpers.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRegistrationService{err: tt.err}
			userSvc := &mockUserService{user: &domain.User{ID: "u1", Email: "alice@example.com"}}
			ctrl := NewRegistrationController(testLogger(), svc, userSvc)

			body := `{"event_id":"e1","team_name":"Rocket"}`
			w := httptest.NewRecorder()
			ctrl.Create(w, authedRequest(http.MethodPost, "/registrations", body))

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			var resp helpers.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Fatalf("expected error code %q, got %+v", tt.wantErr, resp.Error)
			}
		})
	}
}

func TestRegistrationController_TransitionStatus(t *testing.T) {
	svc := &mockRegistrationService{reg: &domain.Registration{ID: "r1", Status: domain.StatusAccepted, QRCode: "qr-abc"}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockUserService{})

	req := authedRequest(http.MethodPut, "/registrations/r1/status", `{"status":"accepted"}`)
	req.SetPathValue("id", "r1")
	w := httptest.NewRecorder()
	ctrl.TransitionStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.lastStatus != domain.StatusAccepted {
		t.Errorf("expected accepted forwarded, got %s", svc.lastStatus)
	}
}

func TestRegistrationController_TransitionStatus_BadTarget(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{}, &mockUserService{})

	for _, status := range []string{"pending", "banana", ""} {
		req := authedRequest(http.MethodPut, "/registrations/r1/status", `{"status":"`+status+`"}`)
		req.SetPathValue("id", "r1")
		w := httptest.NewRecorder()
		ctrl.TransitionStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status %q: expected %d, got %d", status, http.StatusBadRequest, w.Code)
		}
	}
}

func TestRegistrationController_TransitionStatus_Terminal(t *testing.T) {
	svc := &mockRegistrationService{err: domain.ErrInvalidTransition}
	ctrl := NewRegistrationController(testLogger(), svc, &mockUserService{})

	req := authedRequest(http.MethodPut, "/registrations/r1/status", `{"status":"rejected"}`)
	req.SetPathValue("id", "r1")
	w := httptest.NewRecorder()
	ctrl.TransitionStatus(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestRegistrationController_CheckIn(t *testing.T) {
	tests := []struct {
		name     string
		svc      *mockRegistrationService
		wantCode int
	}{
		{
			name:     "success",
			svc:      &mockRegistrationService{reg: &domain.Registration{ID: "r1", CheckedIn: true}},
			wantCode: http.StatusOK,
		},
		{
			name:     "not accepted",
			svc:      &mockRegistrationService{err: domain.ErrNotAccepted},
			wantCode: http.StatusConflict,
		},
		{
			name:     "forbidden",
			svc:      &mockRegistrationService{err: domain.ErrForbidden},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc, &mockUserService{})

			req := authedRequest(http.MethodPut, "/registrations/r1/checkin", "")
			req.SetPathValue("id", "r1")
			w := httptest.NewRecorder()
			ctrl.CheckIn(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestRegistrationController_MarkMemberAttended(t *testing.T) {
	svc := &mockRegistrationService{reg: &domain.Registration{ID: "r1"}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockUserService{})

	req := authedRequest(http.MethodPut, "/registrations/r1/members/bob@example.com/attended", "")
	req.SetPathValue("id", "r1")
	req.SetPathValue("email", "bob@example.com")
	w := httptest.NewRecorder()
	ctrl.MarkMemberAttended(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.lastEmail != "bob@example.com" {
		t.Errorf("expected member email forwarded, got %q", svc.lastEmail)
	}
}

func TestRegistrationController_ListMine(t *testing.T) {
	svc := &mockRegistrationService{regs: []*domain.RegistrationWithEvent{
		{Registration: &domain.Registration{ID: "r1"}, Event: &domain.Event{ID: "e1"}},
	}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockUserService{})

	w := httptest.NewRecorder()
	ctrl.ListMine(w, authedRequest(http.MethodGet, "/registrations/mine", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}
