package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/domain"
)

type InvitationController struct {
	Logger      *slog.Logger
	Service     domain.InvitationService
	UserService domain.UserService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, userSvc domain.UserService) *InvitationController {
	return &InvitationController{
		Logger:      logger,
		Service:     svc,
		UserService: userSvc,
	}
}

// MintInvitationRequest is the request body for POST /invitations.
type MintInvitationRequest struct {
	RegistrationID string `json:"registration_id"`
	// InvitedEmail is optional. When set, only that email may redeem the token.
	InvitedEmail string `json:"invited_email"`
}

// Validate implements helpers.Validator.
func (r *MintInvitationRequest) Validate() []string {
	if strings.TrimSpace(r.RegistrationID) == "" {
		return []string{"registration_id is required"}
	}
	return nil
}

// Mint godoc
// @Summary Mint an invitation token for a registration
// @Description Only the registration's leader may mint. Tokens are single use and expire.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.MintInvitationRequest true "Invitation details"
// @Success 201 {object} helpers.APIResponse{data=domain.InvitationToken}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) Mint(w http.ResponseWriter, r *http.Request) {
	var req MintInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	token, err := c.Service.Mint(r.Context(), req.RegistrationID, userID, req.InvitedEmail)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, token)
}

// AcceptInvitationRequest is the request body for POST /invitations/accept.
type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

// Validate implements helpers.Validator.
func (r *AcceptInvitationRequest) Validate() []string {
	if strings.TrimSpace(r.Token) == "" {
		return []string{"token is required"}
	}
	return nil
}

// Accept godoc
// @Summary Redeem an invitation token
// @Description Consumes the token and adds the authenticated user to the registration's team. Exactly one redeemer wins a contested token.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.AcceptInvitationRequest true "Invitation token"
// @Success 200 {object} helpers.APIResponse{data=domain.RedeemResult}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or mismatch"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/accept [post]
func (c *InvitationController) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	result, err := c.Service.Redeem(r.Context(), strings.TrimSpace(req.Token), domain.RedeemerIdentity{
		UserID: user.ID,
		Name:   strings.TrimSpace(user.Name + " " + user.LastName),
		Email:  user.Email,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
