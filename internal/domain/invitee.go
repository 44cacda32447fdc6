package domain

import (
	"context"
	"time"
)

// InviteeType discriminates the three invitee variants.
type InviteeType string

const (
	InviteeTypeUser  InviteeType = "user"
	InviteeTypeGuest InviteeType = "guest"
	InviteeTypeGroup InviteeType = "group"
)

// User is a known platform identity with a Yammer account. AccessToken is
// stored encrypted at rest by the repository.
// swagger:model User
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Image           string    `json:"image,omitempty"`
	YammerUserID    string    `json:"yammer_user_id"`
	YammerNetworkID string    `json:"-"`
	YammerStaging   bool      `json:"-"`
	AccessToken     string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InNetwork reports whether both users belong to the same external network.
// The relation is symmetric and reflexive by construction.
func (u *User) InNetwork(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.YammerNetworkID != "" && u.YammerNetworkID == other.YammerNetworkID
}

// Guest is an invitee with no platform identity, identified by email only.
// Name may be empty: the email-only creation path bypasses name validation.
// swagger:model Guest
type Guest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Group is an external collective identified by its Yammer group id.
// swagger:model Group
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	YammerGroupID string    `json:"yammer_group_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Invitee is the tagged union of the three variants. Exactly one of User,
// Guest, Group is non-nil, matching Type.
type Invitee struct {
	Type  InviteeType
	User  *User
	Guest *Guest
	Group *Group
}

// UserInvitee wraps a User as an Invitee.
func UserInvitee(u *User) Invitee { return Invitee{Type: InviteeTypeUser, User: u} }

// GuestInvitee wraps a Guest as an Invitee.
func GuestInvitee(g *Guest) Invitee { return Invitee{Type: InviteeTypeGuest, Guest: g} }

// GroupInvitee wraps a Group as an Invitee.
func GroupInvitee(g *Group) Invitee { return Invitee{Type: InviteeTypeGroup, Group: g} }

// ID returns the canonical record id of the underlying variant.
func (i Invitee) ID() string {
	switch i.Type {
	case InviteeTypeUser:
		return i.User.ID
	case InviteeTypeGuest:
		return i.Guest.ID
	case InviteeTypeGroup:
		return i.Group.ID
	}
	return ""
}

// Name returns the display name of the underlying variant.
func (i Invitee) Name() string {
	switch i.Type {
	case InviteeTypeUser:
		return i.User.Name
	case InviteeTypeGuest:
		return i.Guest.Name
	case InviteeTypeGroup:
		return i.Group.Name
	}
	return ""
}

// Email returns the email of the underlying variant.
func (i Invitee) Email() string {
	switch i.Type {
	case InviteeTypeUser:
		return i.User.Email
	case InviteeTypeGuest:
		return i.Guest.Email
	case InviteeTypeGroup:
		return i.Group.Email
	}
	return ""
}

// Valid reports whether the variant pointer matching Type is set.
func (i Invitee) Valid() bool {
	switch i.Type {
	case InviteeTypeUser:
		return i.User != nil
	case InviteeTypeGuest:
		return i.Guest != nil
	case InviteeTypeGroup:
		return i.Group != nil
	}
	return false
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByYammerUserID(ctx context.Context, yammerUserID string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// GuestRepository defines the interface for guest storage. CreateWithoutName
// is the email-only creation path: it persists a guest with an empty name.
type GuestRepository interface {
	CreateWithoutName(ctx context.Context, email string) (*Guest, error)
	GetByEmail(ctx context.Context, email string) (*Guest, error)
	GetByID(ctx context.Context, id string) (*Guest, error)
}

// GroupRepository defines the interface for group storage.
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByYammerGroupID(ctx context.Context, yammerGroupID string) (*Group, error)
	GetByID(ctx context.Context, id string) (*Group, error)
}
