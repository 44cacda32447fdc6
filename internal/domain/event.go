package domain

import (
	"context"
	"time"
)

// EventNameMaxLength is the maximum length of an event name.
const EventNameMaxLength = 70

// Event is a scheduling poll: an owner proposes suggestions and invitees vote.
// UUID (8 lowercase hex chars) is the only externally addressable handle; the
// row ID is never exposed outside the persistence layer.
// swagger:model Event
type Event struct {
	ID        string    `json:"-"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InviteeProfile is the display projection of an invitee (name + email).
// swagger:model InviteeProfile
type InviteeProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SuggestionChange describes one entry of a suggestion diff applied at save
// time: a new suggestion (empty ID), an edit (ID set), or a removal (Remove).
type SuggestionChange struct {
	ID          string
	Description string
	Remove      bool
}

// EventRepository defines the interface for event storage. CreateWithSuggestions
// runs in a single transaction so an event is never persisted without its live
// suggestions.
type EventRepository interface {
	CreateWithSuggestions(ctx context.Context, event *Event, suggestions []*Suggestion) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByUUID(ctx context.Context, uuid string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for the event aggregate.
type EventService interface {
	// CreateEvent validates and persists the event with its suggestions, then
	// enqueues the event-created job, invites the owner with notifications
	// suppressed, and invites each submitted descriptor best effort. Validation
	// failures return *ValidationError and persist nothing.
	CreateEvent(ctx context.Context, ownerID, name string, suggestions []SuggestionChange, invitations []InviteeDescriptor) (*Event, error)
	GetEventByUUID(ctx context.Context, uuid string) (*Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error

	// UpdateSuggestions applies the add/edit/remove diff atomically. At least
	// one suggestion must survive the diff.
	UpdateSuggestions(ctx context.Context, eventID, ownerID string, changes []SuggestionChange) ([]*Suggestion, error)

	// Invitees returns the User and Guest invitees of the event (Groups are
	// excluded), most recently invited first.
	Invitees(ctx context.Context, eventID string) ([]InviteeProfile, error)

	// DeliverReminders re-notifies every invitee except the given user, using
	// the same channel selection as the creation-time notification.
	DeliverReminders(ctx context.Context, eventID, excludingUserID string) error

	UserOwnsEvent(ctx context.Context, eventID, userID string) (bool, error)
	UserIsInvited(ctx context.Context, eventID, userID string) (bool, error)
	UserHasVoted(ctx context.Context, eventID, userID string) (bool, error)

	// CastVote records the user's vote for a suggestion of this event.
	CastVote(ctx context.Context, eventID, suggestionID, userID string) (*Vote, error)
}
