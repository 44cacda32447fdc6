package domain

import (
	"context"
	"time"
)

// Invitation binds one Event to exactly one invitee variant + instance. The
// pair (event, invitee type, invitee id) is unique; the repository maps the
// storage-level unique violation to ErrDuplicateInvite so concurrent creates
// never produce two rows.
// swagger:model Invitation
type Invitation struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	InviteeType InviteeType `json:"invitee_type"`
	InviteeID   string      `json:"invitee_id"`
	CreatedAt   time.Time   `json:"created_at"`

	// SkipNotification suppresses the creation-time notification. Transient,
	// never persisted.
	SkipNotification bool `json:"-"`
}

// InviteeDescriptor is the loosely-typed input of invitee resolution. At most
// one of YammerUserID and YammerGroupID is set; otherwise NameOrEmail is
// treated as an email address.
// swagger:model InviteeDescriptor
type InviteeDescriptor struct {
	YammerUserID  string `json:"yammer_user_id,omitempty"`
	YammerGroupID string `json:"yammer_group_id,omitempty"`
	NameOrEmail   string `json:"name_or_email,omitempty"`
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	// Create persists the invitation. A unique-index violation on
	// (event_id, invitee_type, invitee_id) is returned as ErrDuplicateInvite.
	Create(ctx context.Context, inv *Invitation) error
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	ListByEventIDPaginated(ctx context.Context, eventID string, params PaginationParams) ([]*Invitation, int, error)
	Exists(ctx context.Context, eventID string, inviteeType InviteeType, inviteeID string) (bool, error)
}

// InvitationService drives the invitation lifecycle: resolve the descriptor,
// enforce the self-invite and duplicate invariants, persist, then notify.
type InvitationService interface {
	// Invite resolves the descriptor against the event's owner credentials and
	// creates the invitation, dispatching exactly one notification on success.
	// Fails with ErrSelfInvite, ErrDuplicateInvite, or ErrLookupFailed; in every
	// failure case no invitation row is persisted. A notification failure after
	// the row is committed is logged and not surfaced.
	Invite(ctx context.Context, eventID string, descriptor InviteeDescriptor) (*Invitation, error)

	// InviteWithoutNotification creates an invitation for an already-resolved
	// invitee with the notification suppressed. Used for the owner
	// self-invitation at event creation.
	InviteWithoutNotification(ctx context.Context, event *Event, invitee Invitee) (*Invitation, error)

	// ResolveInvitee finds or creates the canonical invitee record for the
	// descriptor. Idempotent: the same descriptor always resolves to the same
	// record.
	ResolveInvitee(ctx context.Context, event *Event, descriptor InviteeDescriptor) (Invitee, error)

	// DeliverReminder re-dispatches a notification for an existing invitation
	// through the same channel selection as creation, regardless of the
	// suppression flag used then.
	DeliverReminder(ctx context.Context, inv *Invitation) error

	// GetInvitee loads the invitee record referenced by the invitation.
	GetInvitee(ctx context.Context, inv *Invitation) (Invitee, error)

	ListInvitations(ctx context.Context, eventID string, params PaginationParams) ([]*Invitation, int, error)
}

// Notifier decides the notification channel and dispatches. Implementations
// must recompute the channel per call: network membership can change between
// the original invite and a later reminder.
type Notifier interface {
	// NotifyInvitee sends exactly one notification about the event to the
	// invitee: a private message when the invitee is an in-network User of the
	// organizer, an email otherwise.
	NotifyInvitee(ctx context.Context, event *Event, invitee Invitee) error

	// RemindInvitee sends a reminder through the same channel selection.
	RemindInvitee(ctx context.Context, event *Event, invitee Invitee) error

	// PostActivity raises a public feed story for the actor. Fire and log;
	// failures never block the caller.
	PostActivity(ctx context.Context, actor *User, action string, event *Event)
}
