package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/domain"
)

// writeServiceError maps domain sentinel errors to their HTTP status and
// error code. Anything unmapped is a storage or dependency failure and
// surfaces as 500 after being logged.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrMemberNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateRegistration),
		errors.Is(err, domain.ErrDuplicateMember),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrTokenConsumed),
		errors.Is(err, domain.ErrTeamFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeExpired, err.Error())
	case errors.Is(err, domain.ErrCodeMismatch), errors.Is(err, domain.ErrEmailMismatch):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeMismatch, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotAccepted):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrPaymentRequired):
		helpers.WriteJSONError(w, http.StatusPaymentRequired, helpers.ErrCodePaymentRequired, err.Error())
	case errors.Is(err, domain.ErrPaymentUnverified):
		helpers.WriteJSONError(w, http.StatusPaymentRequired, helpers.ErrCodePaymentUnverified, err.Error())
	case errors.Is(err, domain.ErrRegistrationClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeRegistrationClosed, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
