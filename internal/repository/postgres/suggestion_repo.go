package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meetpoll/internal/domain"
)

type suggestionRepository struct {
	DB *sql.DB
}

func NewSuggestionRepository(db *sql.DB) domain.SuggestionRepository {
	return &suggestionRepository{
		DB: db,
	}
}

func (r *suggestionRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Suggestion, error) {
	query := `
		SELECT id, event_id, description, position, created_at
		FROM suggestions
		WHERE event_id = $1
		ORDER BY position ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggestions := make([]*domain.Suggestion, 0)
	for rows.Next() {
		s := &domain.Suggestion{}
		if err := rows.Scan(&s.ID, &s.EventID, &s.Description, &s.Position, &s.CreatedAt); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func (r *suggestionRepository) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	query := `
		SELECT id, event_id, description, position, created_at
		FROM suggestions
		WHERE id = $1
	`
	s := &domain.Suggestion{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.EventID, &s.Description, &s.Position, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ApplyChanges applies the suggestion diff in one transaction: rows flagged
// for removal are deleted (votes go with them via cascade), edits update the
// description, and new non-blank entries are appended after the current
// highest position.
func (r *suggestionRepository) ApplyChanges(ctx context.Context, eventID string, changes []domain.SuggestionChange) ([]*domain.Suggestion, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM suggestions WHERE event_id = $1`, eventID).Scan(&maxPos); err != nil {
		return nil, err
	}
	nextPos := 0
	if maxPos.Valid {
		nextPos = int(maxPos.Int64) + 1
	}

	for _, c := range changes {
		switch {
		case c.Remove && c.ID != "":
			if _, err := tx.ExecContext(ctx, `DELETE FROM suggestions WHERE id = $1 AND event_id = $2`, c.ID, eventID); err != nil {
				return nil, err
			}
		case c.ID != "":
			if _, err := tx.ExecContext(ctx, `UPDATE suggestions SET description = $1 WHERE id = $2 AND event_id = $3`, c.Description, c.ID, eventID); err != nil {
				return nil, err
			}
		case strings.TrimSpace(c.Description) != "":
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO suggestions (event_id, description, position, created_at) VALUES ($1, $2, $3, NOW())`,
				eventID, c.Description, nextPos,
			); err != nil {
				return nil, err
			}
			nextPos++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.ListByEventID(ctx, eventID)
}
