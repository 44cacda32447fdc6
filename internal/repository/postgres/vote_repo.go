package postgres

import (
	"context"
	"database/sql"

	"meetpoll/internal/domain"
)

type voteRepository struct {
	DB *sql.DB
}

func NewVoteRepository(db *sql.DB) domain.VoteRepository {
	return &voteRepository{
		DB: db,
	}
}

func (r *voteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (user_id, suggestion_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, vote.UserID, vote.SuggestionID, vote.CreatedAt).
		Scan(&vote.ID)
}

// HasVotedOnEvent answers "has this user voted on this event" by joining votes
// through suggestions scoped to the event.
func (r *voteRepository) HasVotedOnEvent(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM votes v
			JOIN suggestions s ON s.id = v.suggestion_id
			WHERE s.event_id = $1 AND v.user_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *voteRepository) HasVotedOnSuggestion(ctx context.Context, suggestionID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM votes
			WHERE suggestion_id = $1 AND user_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, suggestionID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
