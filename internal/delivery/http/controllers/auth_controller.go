package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/domain"
)

type AuthController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewAuthController(logger *slog.Logger, svc domain.UserService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// RequestVerificationRequest is the request body for POST /auth/verification.
type RequestVerificationRequest struct {
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (r *RequestVerificationRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// RequestVerification godoc
// @Summary Request an email verification code
// @Description Issues a short-lived verification code and emails it to the address. The response never contains the code.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.RequestVerificationRequest true "Email address"
// @Success 202 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/verification [post]
func (c *AuthController) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var req RequestVerificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RequestVerification(r.Context(), req.Email); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (r *SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		errs = append(errs, "code is required")
	}
	if len(r.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	return errs
}

// AuthResponse is the success payload for signup and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// SignUp godoc
// @Summary Create an account with a verification code
// @Description Verifies the emailed code, creates the account, and consumes the code. Returns a signed token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.SignUpRequest true "Signup details"
// @Success 201 {object} helpers.APIResponse{data=controllers.AuthResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or mismatch"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (code absent or expired)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.SignUp(r.Context(), domain.SignUpInput{
		Email:    req.Email,
		Code:     req.Code,
		Name:     req.Name,
		LastName: req.LastName,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// LogInRequest is the request body for POST /auth/login.
type LogInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (r *LogInRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LogIn godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.LogInRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse{data=controllers.AuthResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) LogIn(w http.ResponseWriter, r *http.Request) {
	var req LogInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AuthResponse{Token: token, User: user})
}
