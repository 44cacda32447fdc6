package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"meetpoll/internal/delivery/http/helpers"
	"meetpoll/internal/delivery/http/middleware"
	"meetpoll/internal/domain"
)

type InvitationController struct {
	Logger       *slog.Logger
	EventService domain.EventService
	Service      domain.InvitationService
	UserRepo     domain.UserRepository
	Directory    domain.Directory
}

func NewInvitationController(
	logger *slog.Logger,
	eventSvc domain.EventService,
	invitationSvc domain.InvitationService,
	userRepo domain.UserRepository,
	directory domain.Directory,
) *InvitationController {
	return &InvitationController{
		Logger:       logger,
		EventService: eventSvc,
		Service:      invitationSvc,
		UserRepo:     userRepo,
		Directory:    directory,
	}
}

// CreateInvitationRequest is the request body for POST /events/{uuid}/invitations.
// Exactly one of the three fields should be set; when several are set the
// first in priority order (user id, group id, name or email) wins.
type CreateInvitationRequest struct {
	YammerUserID  string `json:"yammer_user_id,omitempty"`
	YammerGroupID string `json:"yammer_group_id,omitempty"`
	NameOrEmail   string `json:"name_or_email,omitempty"`
}

// Validate implements helpers.Validator.
func (r *CreateInvitationRequest) Validate() []string {
	if r.YammerUserID == "" && r.YammerGroupID == "" && strings.TrimSpace(r.NameOrEmail) == "" {
		return []string{"one of yammer_user_id, yammer_group_id, or name_or_email is required"}
	}
	return nil
}

// CreateInvitation godoc
// @Summary Invite someone to an event
// @Description Resolves the invitee (network user, group, or email) and creates the invitation, sending exactly one notification. Owner only.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Param body body controllers.CreateInvitationRequest true "Invitee descriptor"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (self-invite, failed lookup)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already invited)"
// @Router /events/{uuid}/invitations [post]
func (c *InvitationController) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	_, event, ok := c.ownedEventFromPath(w, r)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	inv, err := c.Service.Invite(r.Context(), event.ID, domain.InviteeDescriptor{
		YammerUserID:  req.YammerUserID,
		YammerGroupID: req.YammerGroupID,
		NameOrEmail:   req.NameOrEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfInvite):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrDuplicateInvite):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
		case errors.Is(err, domain.ErrLookupFailed):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not look up that invitee")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.internalError(w, r, err)
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListInvitations godoc
// @Summary List the invitations of an event
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{uuid}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	_, event, ok := c.ownedEventFromPath(w, r)
	if !ok {
		return
	}

	params := helpers.ParsePagination(r)
	invitations, total, err := c.Service.ListInvitations(r.Context(), event.ID, params)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if invitations == nil {
		invitations = []*domain.Invitation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]any{
		"invitations": invitations,
		"pagination":  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// SendReminders godoc
// @Summary Re-notify every invitee of an event
// @Description Sends a reminder to each invitee except the requester, choosing the channel per invitee as for the original invitation. Owner only.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Success 202 {object} helpers.APIResponse
// @Router /events/{uuid}/reminders [post]
func (c *InvitationController) SendReminders(w http.ResponseWriter, r *http.Request) {
	userID, event, ok := c.ownedEventFromPath(w, r)
	if !ok {
		return
	}
	if err := c.EventService.DeliverReminders(r.Context(), event.ID, userID); err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]string{"status": "reminders sent"})
}

// LookupInvitee godoc
// @Summary Look an email address up in the requester's network
// @Description Uses the requester's network credentials. A hit returns the network profile; a miss returns 404 and persists nothing.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param email query string true "Email address"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitees/lookup [get]
func (c *InvitationController) LookupInvitee(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email is required")
		return
	}

	requester, err := c.UserRepo.GetByID(r.Context(), userID)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	creds := domain.Credentials{AccessToken: requester.AccessToken, Staging: requester.YammerStaging}
	user, err := c.Directory.FindUserByEmail(r.Context(), creds, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no network user with that email")
			return
		}
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ownedEventFromPath resolves {uuid} to an event and enforces that the
// authenticated user owns it.
func (c *InvitationController) ownedEventFromPath(w http.ResponseWriter, r *http.Request) (string, *domain.Event, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", nil, false
	}
	uuid := r.PathValue("uuid")
	if !eventUUIDRegex.MatchString(uuid) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event uuid")
		return "", nil, false
	}
	event, err := c.EventService.GetEventByUUID(r.Context(), uuid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return "", nil, false
		}
		c.internalError(w, r, err)
		return "", nil, false
	}
	if event.OwnerID != userID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return "", nil, false
	}
	return userID, event, true
}

func (c *InvitationController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
