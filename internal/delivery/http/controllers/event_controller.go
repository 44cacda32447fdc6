package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"meetpoll/internal/delivery/http/helpers"
	"meetpoll/internal/delivery/http/middleware"
	"meetpoll/internal/domain"
)

// eventUUIDRegex matches the 8-hex-char external event handle.
var eventUUIDRegex = regexp.MustCompile(`^[0-9a-f]{8}$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// SuggestionChangeRequest is one suggestion entry in create/update requests.
type SuggestionChangeRequest struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Remove      bool   `json:"remove,omitempty"`
}

func toDomainChanges(in []SuggestionChangeRequest) []domain.SuggestionChange {
	out := make([]domain.SuggestionChange, 0, len(in))
	for _, c := range in {
		out = append(out, domain.SuggestionChange{ID: c.ID, Description: c.Description, Remove: c.Remove})
	}
	return out
}

// CreateEventRequest is the request body for POST /events. Invitations are
// optional; each entry is resolved and invited after the event is created.
type CreateEventRequest struct {
	Name        string                    `json:"name"`
	Suggestions []SuggestionChangeRequest `json:"suggestions"`
	Invitations []CreateInvitationRequest `json:"invitations,omitempty"`
}

func toDomainDescriptors(in []CreateInvitationRequest) []domain.InviteeDescriptor {
	out := make([]domain.InviteeDescriptor, 0, len(in))
	for _, d := range in {
		out = append(out, domain.InviteeDescriptor{
			YammerUserID:  d.YammerUserID,
			YammerGroupID: d.YammerGroupID,
			NameOrEmail:   d.NameOrEmail,
		})
	}
	return out
}

// CreateEvent godoc
// @Summary Create an event with its suggestions
// @Description Creates an event owned by the authenticated user. The owner is invited automatically without a notification.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event name and suggestions"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), userID, req.Name, toDomainChanges(req.Suggestions), toDomainDescriptors(req.Invitations))
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, ve.Error())
			return
		}
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by its uuid
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid (8 hex chars)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{uuid} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := c.eventFromPath(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyEvents godoc
// @Summary List events owned by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByOwner(r.Context(), userID)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its suggestions, votes, and invitations. Owner only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{uuid} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, ok := c.eventFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), event.ID, userID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"deleted": event.UUID})
}

// UpdateSuggestionsRequest is the request body for PATCH /events/{uuid}/suggestions.
type UpdateSuggestionsRequest struct {
	Suggestions []SuggestionChangeRequest `json:"suggestions"`
}

// Validate implements helpers.Validator.
func (r *UpdateSuggestionsRequest) Validate() []string {
	if len(r.Suggestions) == 0 {
		return []string{"suggestions is required"}
	}
	return nil
}

// UpdateSuggestions godoc
// @Summary Apply a suggestion diff to an event
// @Description Adds, edits, and removes suggestions atomically. At least one suggestion must survive. Owner only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Param body body controllers.UpdateSuggestionsRequest true "Suggestion diff"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{uuid}/suggestions [patch]
func (c *EventController) UpdateSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, ok := c.eventFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateSuggestionsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	suggestions, err := c.Service.UpdateSuggestions(r.Context(), event.ID, userID, toDomainChanges(req.Suggestions))
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, ve.Error())
			return
		}
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, suggestions)
}

// Invitees godoc
// @Summary List the invitees of an event
// @Description Returns name and email of User and Guest invitees, most recently invited first. Groups are excluded.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{uuid}/invitees [get]
func (c *EventController) Invitees(w http.ResponseWriter, r *http.Request) {
	event, ok := c.eventFromPath(w, r)
	if !ok {
		return
	}
	invitees, err := c.Service.Invitees(r.Context(), event.ID)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitees)
}

// CastVote godoc
// @Summary Vote for a suggestion
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Event uuid"
// @Param suggestionID path string true "Suggestion ID"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{uuid}/suggestions/{suggestionID}/votes [post]
func (c *EventController) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, ok := c.eventFromPath(w, r)
	if !ok {
		return
	}
	suggestionID := r.PathValue("suggestionID")
	if suggestionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing suggestionID")
		return
	}

	vote, err := c.Service.CastVote(r.Context(), event.ID, suggestionID, userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, vote)
}

// eventFromPath resolves the {uuid} path segment to an event, writing the
// error response itself when resolution fails.
func (c *EventController) eventFromPath(w http.ResponseWriter, r *http.Request) (*domain.Event, bool) {
	uuid := r.PathValue("uuid")
	if !eventUUIDRegex.MatchString(uuid) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event uuid")
		return nil, false
	}
	event, err := c.Service.GetEventByUUID(r.Context(), uuid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return nil, false
		}
		c.internalError(w, r, err)
		return nil, false
	}
	return event, true
}

func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.internalError(w, r, err)
	}
}

func (c *EventController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
