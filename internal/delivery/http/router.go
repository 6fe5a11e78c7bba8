package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"teamregistry/internal/delivery/http/controllers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	registrationController *controllers.RegistrationController,
	invitationController *controllers.InvitationController,
	statsController *controllers.StatsController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/verification", authController.RequestVerification)
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.LogIn)

	// Registrations
	mux.HandleFunc("POST /registrations", requireAuth(registrationController.Create))
	mux.HandleFunc("GET /registrations/mine", requireAuth(registrationController.ListMine))
	mux.HandleFunc("PUT /registrations/{id}/status", requireAuth(registrationController.TransitionStatus))
	mux.HandleFunc("PUT /registrations/{id}/checkin", requireAuth(registrationController.CheckIn))
	mux.HandleFunc("PUT /registrations/{id}/members/{email}/attended", requireAuth(registrationController.MarkMemberAttended))

	// Invitations
	mux.HandleFunc("POST /invitations", requireAuth(invitationController.Mint))
	mux.HandleFunc("POST /invitations/accept", requireAuth(invitationController.Accept))

	// Stats
	mux.HandleFunc("GET /events/{id}/stats", requireAuth(statsController.EventStats))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
