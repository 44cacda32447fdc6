package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"meetpoll/internal/delivery/http/controllers"
	"meetpoll/internal/delivery/http/middleware"
	"meetpoll/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	invitationController *controllers.InvitationController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/token", authController.ExchangeToken)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{uuid}", auth(eventController.GetEvent))
	mux.HandleFunc("DELETE /events/{uuid}", auth(eventController.DeleteEvent))
	mux.HandleFunc("PATCH /events/{uuid}/suggestions", auth(eventController.UpdateSuggestions))
	mux.HandleFunc("GET /events/{uuid}/invitees", auth(eventController.Invitees))
	mux.HandleFunc("POST /events/{uuid}/suggestions/{suggestionID}/votes", auth(eventController.CastVote))

	// Invitations
	mux.HandleFunc("POST /events/{uuid}/invitations", auth(invitationController.CreateInvitation))
	mux.HandleFunc("GET /events/{uuid}/invitations", auth(invitationController.ListInvitations))
	mux.HandleFunc("POST /events/{uuid}/reminders", auth(invitationController.SendReminders))
	mux.HandleFunc("GET /invitees/lookup", auth(invitationController.LookupInvitee))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
