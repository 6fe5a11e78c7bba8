package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/domain"
)

type RegistrationController struct {
	Logger      *slog.Logger
	Service     domain.RegistrationService
	UserService domain.UserService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, userSvc domain.UserService) *RegistrationController {
	return &RegistrationController{
		Logger:      logger,
		Service:     svc,
		UserService: userSvc,
	}
}

// CreateRegistrationMember is one listed team member in a create request.
type CreateRegistrationMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateRegistrationRequest is the request body for POST /registrations.
type CreateRegistrationRequest struct {
	EventID          string                     `json:"event_id"`
	TeamName         string                     `json:"team_name"`
	Members          []CreateRegistrationMember `json:"members"`
	PaymentSessionID string                     `json:"payment_session_id"`
}

// Validate implements helpers.Validator.
func (r *CreateRegistrationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	if strings.TrimSpace(r.TeamName) == "" {
		errs = append(errs, "team_name is required")
	}
	for _, m := range r.Members {
		if strings.TrimSpace(m.Email) == "" {
			errs = append(errs, "member email is required")
			break
		}
	}
	return errs
}

// Create godoc
// @Summary Register a team for an event
// @Description Creates a pending registration led by the authenticated user. Paid events require a verified payment session.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateRegistrationRequest true "Registration details"
// @Success 201 {object} helpers.APIResponse{data=domain.Registration}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 402 {object} helpers.APIResponse "error.code: payment_required or payment_unverified"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or registration_closed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [post]
func (c *RegistrationController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	leader, err := c.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	members := make([]domain.TeamMember, len(req.Members))
	for i, m := range req.Members {
		members[i] = domain.TeamMember{Name: m.Name, Email: m.Email}
	}
	reg, err := c.Service.Create(r.Context(), domain.CreateRegistrationInput{
		EventID:          req.EventID,
		LeaderUserID:     leader.ID,
		LeaderName:       strings.TrimSpace(leader.Name + " " + leader.LastName),
		LeaderEmail:      leader.Email,
		TeamName:         strings.TrimSpace(req.TeamName),
		Members:          members,
		PaymentSessionID: req.PaymentSessionID,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListMine godoc
// @Summary List the authenticated leader's registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.RegistrationWithEvent}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/mine [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// TransitionStatusRequest is the request body for PUT /registrations/{id}/status.
type TransitionStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *TransitionStatusRequest) Validate() []string {
	s := domain.RegistrationStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	if s != domain.StatusAccepted && s != domain.StatusRejected {
		return []string{"status must be accepted or rejected"}
	}
	r.Status = string(s)
	return nil
}

// TransitionStatus godoc
// @Summary Accept or reject a pending registration
// @Description Only the event owner may transition. Accepting issues the QR credential; rejecting invalidates outstanding invitation tokens.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param body body controllers.TransitionStatusRequest true "Target status"
// @Success 200 {object} helpers.APIResponse{data=domain.Registration}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{id}/status [put]
func (c *RegistrationController) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registration id")
		return
	}
	var req TransitionStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.TransitionStatus(r.Context(), id, userID, domain.RegistrationStatus(req.Status))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// CheckIn godoc
// @Summary Check in an accepted registration's leader
// @Description Idempotent: re-checking in is a no-op success.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} helpers.APIResponse{data=domain.Registration}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition (not accepted)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{id}/checkin [put]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registration id")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.CheckIn(r.Context(), id, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// MarkMemberAttended godoc
// @Summary Mark a team member as attended
// @Description Idempotent: re-marking is a no-op success.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param email path string true "Member email"
// @Success 200 {object} helpers.APIResponse{data=domain.Registration}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition (not accepted)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{id}/members/{email}/attended [put]
func (c *RegistrationController) MarkMemberAttended(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	email := r.PathValue("email")
	if id == "" || email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registration id or member email")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.MarkMemberAttended(r.Context(), id, userID, email)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
