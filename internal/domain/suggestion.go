package domain

import (
	"context"
	"time"
)

// Suggestion is one proposed time/option of an event. Position preserves the
// insertion order of the proposal slots.
// swagger:model Suggestion
type Suggestion struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSuggestion returns a new Suggestion. ID is set by the repository on create.
func NewSuggestion(eventID, description string, position int, createdAt time.Time) *Suggestion {
	return &Suggestion{
		EventID:     eventID,
		Description: description,
		Position:    position,
		CreatedAt:   createdAt,
	}
}

// Vote records that one User voted for one Suggestion. The existence of a vote
// row for a user within an event, joined through suggestions, answers "has this
// user voted on this event".
// swagger:model Vote
type Vote struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SuggestionID string    `json:"suggestion_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// SuggestionRepository defines storage operations for suggestions. ApplyChanges
// inserts, updates, and deletes in one transaction.
type SuggestionRepository interface {
	ListByEventID(ctx context.Context, eventID string) ([]*Suggestion, error)
	GetByID(ctx context.Context, id string) (*Suggestion, error)
	ApplyChanges(ctx context.Context, eventID string, changes []SuggestionChange) ([]*Suggestion, error)
}

// VoteRepository defines storage operations for votes.
type VoteRepository interface {
	Create(ctx context.Context, vote *Vote) error
	// HasVotedOnEvent reports whether the user has a vote on any suggestion of
	// the event.
	HasVotedOnEvent(ctx context.Context, eventID, userID string) (bool, error)
	HasVotedOnSuggestion(ctx context.Context, suggestionID, userID string) (bool, error)
}
